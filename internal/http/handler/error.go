package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"docrepo/internal/http/middleware"
	"docrepo/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string `json:"request_id"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	// Error carries the underlying detail and is only set on 500 responses.
	Error string `json:"error,omitempty"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "MISSING_FIELDS", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable message
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Code:      code,
		Message:   message,
	})
}

func writeInternal(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Code:      "INTERNAL_ERROR",
		Message:   "Internal server error",
		Error:     err.Error(),
	})
}

func writeNotFound(c *fiber.Ctx) error {
	return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "Document not found")
}

// writeServiceError maps service errors onto HTTP statuses: validation failures are 400,
// missing documents or files 404, everything else 500.
func writeServiceError(c *fiber.Ctx, err error) error {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		return writeError(c, fiber.StatusBadRequest, vErr.Code, vErr.Message)
	case errors.Is(err, service.ErrNotFound):
		return writeNotFound(c)
	default:
		return writeInternal(c, err)
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if !errors.As(err, &fiberErr) {
			return writeServiceError(c, err)
		}

		switch fiberErr.Code {
		case fiber.StatusBadRequest:
			return writeError(c, fiberErr.Code, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, fiberErr.Code, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, fiberErr.Code, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, fiberErr.Code, "PAYLOAD_TOO_LARGE", "request body too large")
		default:
			if fiberErr.Code < fiber.StatusInternalServerError {
				return writeError(c, fiberErr.Code, "REQUEST_ERROR", fiberErr.Message)
			}
			return writeInternal(c, err)
		}
	}
}
