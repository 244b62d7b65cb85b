package gateway

import (
	"net/http"

	"github.com/dwikikusuma/shoping-cart/pkg/apperr"
	"github.com/gin-gonic/gin"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// httpStatusFromGRPC maps a gRPC status error onto an HTTP status, a stable
// error code and the client-facing message.
func httpStatusFromGRPC(err error) (int, string, string) {
	st, ok := status.FromError(err)
	if !ok {
		return http.StatusInternalServerError, "INTERNAL", "internal error"
	}

	switch st.Code() {
	case codes.InvalidArgument:
		return http.StatusBadRequest, "INVALID_ARGUMENT", st.Message()
	case codes.FailedPrecondition:
		return http.StatusBadRequest, "FAILED_PRECONDITION", st.Message()
	case codes.NotFound:
		return http.StatusNotFound, "NOT_FOUND", st.Message()
	case codes.AlreadyExists:
		return http.StatusConflict, "ALREADY_EXISTS", st.Message()
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return http.StatusServiceUnavailable, "UNAVAILABLE", st.Message()
	default:
		return http.StatusInternalServerError, "INTERNAL", "internal error"
	}
}

func writeError(c *gin.Context, err error) {
	httpStatus, code, msg := httpStatusFromGRPC(apperr.Status(err))
	if httpStatus >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(httpStatus, envelope{Success: false, Code: code, Message: msg})
}

func writeBindError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, envelope{
		Success: false,
		Code:    "INVALID_ARGUMENT",
		Message: "invalid request body: " + err.Error(),
	})
}
