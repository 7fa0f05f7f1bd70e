package repository

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"rewear/pkg/errors"
)

const (
	usersCollection = "users"
	itemsCollection = "items"
	swapsCollection = "swaps"

	// emailsCollection holds one document per registered address, keyed by emailKey.
	emailsCollection = "emails"
)

// emailKey turns an address into a document ID. Slashes are not allowed in IDs.
func emailKey(email string) string {
	return url.PathEscape(strings.ToLower(strings.TrimSpace(email)))
}

// countQuery runs a server-side COUNT aggregation over q.
func countQuery(ctx context.Context, q firestore.Query) (int64, error) {
	result, err := q.NewAggregationQuery().WithCount("all").Get(ctx)
	if err != nil {
		return 0, err
	}

	value, ok := result["all"].(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("unexpected count result type %T", result["all"])
	}
	return value.GetIntegerValue(), nil
}

func readError(resource string, err error) error {
	if status.Code(err) == codes.NotFound {
		return errors.NotFound(resource, err)
	}
	return errors.Internal("Failed to get "+resource, err)
}

// deleteRefs removes every document through a bulk writer and waits for completion.
func deleteRefs(ctx context.Context, client *firestore.Client, refs []*firestore.DocumentRef) error {
	if len(refs) == 0 {
		return nil
	}

	bw := client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(refs))
	for _, ref := range refs {
		job, err := bw.Delete(ref)
		if err != nil {
			bw.End()
			return err
		}
		jobs = append(jobs, job)
	}
	bw.End()

	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return err
		}
	}
	return nil
}

// asAppError keeps AppErrors raised inside a transaction and wraps anything else.
func asAppError(message string, err error) error {
	if _, ok := errors.As(err); ok {
		return err
	}
	return errors.Internal(message, err)
}
