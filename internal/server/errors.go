package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	alertdomain "github.com/kickwatch/alerts-service/internal/alert/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrUpstream       = errors.New("upstream_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case isValidationError(err):
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: "invalid value",
				},
			},
		}
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, alertdomain.ErrDuplicate):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway, errorPayload{
			Type:    "upstream_unavailable",
			Message: "upstream unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, alertdomain.ErrInvalidUser),
		errors.Is(err, alertdomain.ErrInvalidProduct),
		errors.Is(err, alertdomain.ErrNoTrigger),
		errors.Is(err, alertdomain.ErrInvalidPrice),
		errors.Is(err, alertdomain.ErrInvalidPercent),
		errors.Is(err, alertdomain.ErrMissingOriginal),
		errors.Is(err, alertdomain.ErrInvalidChannel):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, alertdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	switch code {
	case "invalid_request":
		return "request"
	case "invalid_user":
		return "user_id"
	case "invalid_product":
		return "product_id"
	case "invalid_price":
		return "desired_price"
	case "invalid_percent":
		return "desired_percent"
	case "missing_original_price":
		return "original_price"
	case "invalid_channel":
		return "channels"
	case "no_trigger":
		return "triggers"
	default:
		return ""
	}
}

// classifyErrorForLog feeds the request log's error_type/error_code
// fields without touching the response body.
func classifyErrorForLog(err error) (string, string) {
	switch {
	case err == nil:
		return "", ""
	case isValidationError(err):
		return "validation", validationErrorCode(err)
	case errors.Is(err, alertdomain.ErrDuplicate):
		return "conflict", "duplicate_alert"
	case isNotFoundError(err):
		return "not_found", "not_found"
	case errors.Is(err, ErrUpstream):
		return "upstream", "warehouse_unavailable"
	default:
		return "internal", "internal_error"
	}
}
