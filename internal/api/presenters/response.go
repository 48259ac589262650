package presenters

import (
	"errors"

	"github.com/PavelDubrovin93/foodgram/domain"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func SuccessResponse(c *fiber.Ctx, data interface{}, code int, message string) error {
	return c.Status(code).JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse maps the error taxonomy onto statuses: validation 400,
// conflict 409, not-found 404, ownership 403, credential and token
// faults 401. Anything untyped is a server fault, reported as 500 with
// no detail.
func ErrorResponse(c *fiber.Ctx, code int, message string, err error) error {
	detail := ""
	if err != nil {
		detail = err.Error()
	}

	var inputErrs validator.ValidationErrors
	switch {
	case err == nil:
	case domain.IsValidation(err), errors.As(err, &inputErrs):
		code = fiber.StatusBadRequest
	case domain.IsConflict(err):
		code = fiber.StatusConflict
	case domain.IsNotFound(err):
		code = fiber.StatusNotFound
	case errors.Is(err, domain.ErrUserNotAllowed):
		code = fiber.StatusForbidden
	case errors.Is(err, domain.ErrCredentialsInvalid),
		errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrTokenInvalid),
		errors.Is(err, domain.ErrTokenNotFound):
		code = fiber.StatusUnauthorized
	default:
		code = fiber.StatusInternalServerError
	}

	if code >= fiber.StatusInternalServerError {
		detail = ""
	}

	return c.Status(code).JSON(Response{
		Success: false,
		Message: message,
		Error:   detail,
	})
}
