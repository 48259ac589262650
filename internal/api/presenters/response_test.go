package presenters

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/PavelDubrovin93/foodgram/domain"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestValidationError() error {
	type payload struct {
		Email string `validate:"required,email"`
	}
	return validator.New().Struct(payload{})
}

func perform(t *testing.T, err error) (int, Response) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return ErrorResponse(c, fiber.StatusBadRequest, "request failed", err)
	})

	resp, reqErr := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, reqErr)
	defer resp.Body.Close()

	body, reqErr := io.ReadAll(resp.Body)
	require.NoError(t, reqErr)

	var parsed Response
	require.NoError(t, json.Unmarshal(body, &parsed))
	return resp.StatusCode, parsed
}

func TestErrorResponse_StatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", domain.NewValidationError("amount", "out of bounds"), fiber.StatusBadRequest},
		{"request validation", requestValidationError(), fiber.StatusBadRequest},
		{"conflict", domain.NewConflictError("favorite", "already exists"), fiber.StatusConflict},
		{"not found", domain.NewNotFoundError("recipe"), fiber.StatusNotFound},
		{"not allowed", domain.ErrUserNotAllowed, fiber.StatusForbidden},
		{"bad credentials", domain.ErrCredentialsInvalid, fiber.StatusUnauthorized},
		{"expired token", domain.ErrTokenExpired, fiber.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, parsed := perform(t, tc.err)
			assert.Equal(t, tc.wantStatus, status)
			assert.False(t, parsed.Success)
			assert.NotEmpty(t, parsed.Error)
		})
	}
}

func TestErrorResponse_UntypedErrorIsServerFaultWithoutDetail(t *testing.T) {
	status, parsed := perform(t, errors.New("pq: connection reset by peer on host db-internal-1"))

	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.False(t, parsed.Success)
	assert.Equal(t, "request failed", parsed.Message)
	assert.Empty(t, parsed.Error)
}
