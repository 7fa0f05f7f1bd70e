package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "rewear/pkg/errors"
)

func render(t *testing.T, err error) (int, Response, map[string]interface{}) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	require.NoError(t, Error(c, err))

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	return rec.Code, resp, raw
}

func TestErrorMapsAppErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{apperrors.NotFound("Item", nil), http.StatusNotFound, apperrors.CodeNotFound},
		{apperrors.Conflict("duplicate"), http.StatusConflict, apperrors.CodeConflict},
		{apperrors.InvalidState("not pending"), http.StatusUnprocessableEntity, apperrors.CodeInvalidState},
		{apperrors.Internal("store failed", errors.New("connection reset")), http.StatusInternalServerError, apperrors.CodeInternal},
		{echo.NewHTTPError(http.StatusMethodNotAllowed, "nope"), http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED"},
		{errors.New("boom"), http.StatusInternalServerError, apperrors.CodeInternal},
	}

	for _, tc := range cases {
		status, resp, _ := render(t, tc.err)
		assert.Equal(t, tc.status, status, tc.code)
		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, tc.code, resp.Error.Code)
	}
}

func TestErrorDoesNotLeakInternals(t *testing.T) {
	_, resp, _ := render(t, errors.New("dial tcp 10.0.0.3:5432: connection refused"))
	assert.Equal(t, "An unexpected error occurred", resp.Error.Message)

	_, resp, _ = render(t, apperrors.Internal("Failed to save swap", errors.New("rpc error: deadline")))
	assert.Equal(t, "Failed to save swap", resp.Error.Message)
}

func TestValidationErrorsListEveryField(t *testing.T) {
	type input struct {
		Title  string `json:"title" validate:"required"`
		Points int    `json:"points_value" validate:"min=1"`
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string { return fld.Tag.Get("json") })

	err := v.Struct(input{})
	require.Error(t, err)

	status, _, raw := render(t, err)
	assert.Equal(t, http.StatusBadRequest, status)

	details := raw["error"].(map[string]interface{})["details"].([]interface{})
	fields := make([]string, 0, len(details))
	for _, d := range details {
		fields = append(fields, d.(map[string]interface{})["field"].(string))
	}
	assert.ElementsMatch(t, []string{"title", "points_value"}, fields)
}

func TestPaginatedEnvelope(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	require.NoError(t, Paginated(c, []string{}, 25, 4, 10))

	var body struct {
		Data PaginatedResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 4, body.Data.Pagination.CurrentPage)
	assert.Equal(t, 3, body.Data.Pagination.TotalPages)
	assert.Equal(t, int64(25), body.Data.Pagination.TotalItems)
	assert.Equal(t, []interface{}{}, body.Data.Items)
}
