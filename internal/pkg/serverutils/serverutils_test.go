package serverutils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func TestParseUserID(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()

	id, err := ParseUserID(signToken(t, jwt.MapClaims{"user_id": "u-1", "exp": exp}), testSecret)
	require.NoError(t, err)
	assert.Equal(t, "u-1", id)

	id, err = ParseUserID(signToken(t, jwt.MapClaims{"user_id": float64(42), "exp": exp}), testSecret)
	require.NoError(t, err)
	assert.Equal(t, "42", id)

	_, err = ParseUserID(signToken(t, jwt.MapClaims{"exp": exp}), testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseUserID(signToken(t, jwt.MapClaims{"user_id": "u-1", "exp": exp}), "other-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseUserID(signToken(t, jwt.MapClaims{"user_id": "u-1", "exp": time.Now().Add(-time.Hour).Unix()}), testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseUserID_EmptySecretRejectsEveryToken(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"user_id": "u-1"})

	_, err := ParseUserID(token, "")
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestJwtMiddleware_EmptySecret(t *testing.T) {
	app := fiber.New()
	app.Get("/me", JwtMiddleware(""), func(ctx *fiber.Ctx) error {
		return ctx.SendString(UserID(ctx))
	})

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.MapClaims{"user_id": "u-1"}))
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func newTestApp() *fiber.App {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/me", JwtMiddleware(testSecret), func(ctx *fiber.Ctx) error {
		return ctx.JSON(SuccessResponse("ok", UserID(ctx)))
	})
	app.Get("/boom", func(ctx *fiber.Ctx) error {
		return errors.New("database on fire")
	})
	app.Get("/bad", func(ctx *fiber.Ctx) error {
		return ValidateRequest(struct {
			Text string `validate:"required"`
		}{})
	})
	return app
}

func decode(t *testing.T, body io.Reader) Response {
	t.Helper()
	var r Response
	require.NoError(t, json.NewDecoder(body).Decode(&r))
	return r
}

func TestJwtMiddleware(t *testing.T) {
	app := newTestApp()
	token := signToken(t, jwt.MapClaims{"user_id": "u-1"})

	tests := []struct {
		name     string
		header   string
		query    string
		wantCode int
	}{
		{"header", "Bearer " + token, "", fiber.StatusOK},
		{"query", "", "?token=" + token, fiber.StatusOK},
		{"missing", "", "", fiber.StatusUnauthorized},
		{"garbage", "Bearer nope", "", fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, resp.StatusCode)

			if tt.wantCode == fiber.StatusOK {
				assert.Equal(t, "u-1", decode(t, resp.Body).Data)
			}
		})
	}
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := newTestApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Internal server error", decode(t, resp.Body).Message)

	resp, err = app.Test(httptest.NewRequest("GET", "/bad", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	body := decode(t, resp.Body)
	assert.False(t, body.Success)
	assert.Equal(t, "text failed on required", body.Message)
}
