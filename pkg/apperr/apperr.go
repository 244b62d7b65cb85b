// Package apperr holds the error kinds shared by every bounded context and
// their mapping onto gRPC status codes.
package apperr

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("state conflict")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrUnavailable       = errors.New("storage unavailable")
)

// Invalid returns an ErrInvalidInput carrying msg.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Storage marks err as an underlying storage failure while keeping it in the chain.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}

func Code(err error) codes.Code {
	switch {
	case err == nil:
		return codes.OK
	case errors.Is(err, ErrInvalidInput):
		return codes.InvalidArgument
	case errors.Is(err, ErrNotFound):
		return codes.NotFound
	case errors.Is(err, ErrConflict), errors.Is(err, ErrInsufficientStock):
		return codes.FailedPrecondition
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, ErrUnavailable):
		return codes.Unavailable
	}
	if s, ok := status.FromError(err); ok {
		return s.Code()
	}
	return codes.Internal
}

// Status converts err into a gRPC status. Internal and storage failures never
// leak their message.
func Status(err error) error {
	code := Code(err)
	switch code {
	case codes.OK:
		return nil
	case codes.Internal:
		return status.Error(codes.Internal, "internal error")
	}
	if errors.Is(err, ErrUnavailable) {
		return status.Error(codes.Unavailable, ErrUnavailable.Error())
	}
	return status.Error(code, err.Error())
}
