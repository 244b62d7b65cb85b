package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	cartdomain "github.com/dwikikusuma/shoping-cart/internal/cart/domain"
	"github.com/dwikikusuma/shoping-cart/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestHTTPStatusFromGRPC(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"InvalidArgument -> 400", status.Error(codes.InvalidArgument, "bad"), http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"FailedPrecondition -> 400", status.Error(codes.FailedPrecondition, "closed"), http.StatusBadRequest, "FAILED_PRECONDITION"},
		{"NotFound -> 404", status.Error(codes.NotFound, "missing"), http.StatusNotFound, "NOT_FOUND"},
		{"Unavailable -> 503", status.Error(codes.Unavailable, "down"), http.StatusServiceUnavailable, "UNAVAILABLE"},
		{"DeadlineExceeded -> 503", status.Error(codes.DeadlineExceeded, "timeout"), http.StatusServiceUnavailable, "UNAVAILABLE"},
		{"Internal -> 500", status.Error(codes.Internal, "secret"), http.StatusInternalServerError, "INTERNAL"},
		{"non-grpc error -> 500", errors.New("boom"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotStatus, gotCode, _ := httpStatusFromGRPC(tt.err)
			assert.Equal(t, tt.wantStatus, gotStatus)
			assert.Equal(t, tt.wantCode, gotCode)
		})
	}
}

func TestDomainErrorsThroughStatus(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
	}{
		{cartdomain.ErrInvalidQuantity, http.StatusBadRequest},
		{cartdomain.ErrCartNotEditable, http.StatusBadRequest},
		{fmt.Errorf("checkout: %w", apperr.ErrInsufficientStock), http.StatusBadRequest},
		{cartdomain.ErrCartNotFound, http.StatusNotFound},
		{apperr.Storage("get cart", errors.New("conn reset")), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			gotStatus, _, msg := httpStatusFromGRPC(apperr.Status(tt.err))
			assert.Equal(t, tt.wantStatus, gotStatus)
			switch gotStatus {
			case http.StatusInternalServerError:
				assert.Equal(t, "internal error", msg)
			case http.StatusServiceUnavailable:
				assert.NotContains(t, msg, "conn reset")
			}
		})
	}
}
