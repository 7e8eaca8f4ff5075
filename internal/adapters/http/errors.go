package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/SrinivasYANAGANDALA/smart-turism/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, not_found, internal_error, etc.
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, 404, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, 500, "internal_error", msg)
}

// errUnauthorized returns a 401 error.
func errUnauthorized(c *fiber.Ctx, msg string) error {
	return newError(c, 401, "unauthorized", msg)
}

// errForbidden returns a 403 error.
func errForbidden(c *fiber.Ctx, msg string) error {
	return newError(c, 403, "forbidden", msg)
}

// errConflict returns a 409 error.
func errConflict(c *fiber.Ctx, msg string) error {
	return newError(c, 409, "conflict", msg)
}

// mapDomainError translates engine errors to HTTP responses. Delivery errors
// never reach here; the engine reports them as warnings on a success.
func mapDomainError(c *fiber.Ctx, err error) error {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return errBadRequest(c, ve.Error())
	case errors.Is(err, domain.ErrInvalidCoordinate):
		return errBadRequest(c, "coordinates out of range")
	case errors.Is(err, domain.ErrTrackingDisabled):
		return errForbidden(c, "Tracking disabled")
	case errors.Is(err, domain.ErrNoResponderAvailable):
		return newError(c, 404, "no_responder_available", "no active responder in the directory")
	case errors.Is(err, domain.ErrNotFound):
		return errNotFound(c, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		return errConflict(c, "alert is not in a state that allows this transition")
	default:
		return errInternal(c, err.Error())
	}
}
