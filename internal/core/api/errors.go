package api

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/solatis/formkeeper/internal/types"
)

var (
	errInvalidRequest = errors.New("invalid request")
	errNoStore        = errors.New("no question-set store configured")
	errStoredSet      = errors.New("stored question set does not compile")
)

// toStatus maps service errors to gRPC codes. Authentication errors are
// mapped by the auth interceptor before a handler runs.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var code codes.Code
	switch {
	case errors.Is(err, errInvalidRequest), errors.Is(err, types.ErrSchemaViolation):
		code = codes.InvalidArgument
	case errors.Is(err, types.ErrQuestionSetNotFound):
		code = codes.NotFound
	case errors.Is(err, errNoStore), errors.Is(err, errStoredSet):
		code = codes.FailedPrecondition
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	default:
		code = codes.Unavailable
	}
	return status.Error(code, err.Error())
}
