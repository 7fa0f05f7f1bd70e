package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmailKey(t *testing.T) {
	assert.Equal(t, "dana@example.com", emailKey("  Dana@Example.com "))
	assert.Equal(t, emailKey("dana@example.com"), emailKey("DANA@EXAMPLE.COM"))
	assert.NotContains(t, emailKey("a/b@example.com"), "/")
}
