// Package testutil builds Fiber apps and requests for handler tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"note-shelf/cmd/server/handlers/httperr"
	"note-shelf/internal/config"
	"note-shelf/internal/logger"
	"note-shelf/internal/services/auth"
	"note-shelf/internal/services/notes"
	"note-shelf/internal/utils/validation"
)

// JWTSecret signs every token produced by CreateTestJWT.
const JWTSecret = "test-secret-key-with-32-plus-characters"

// CreateTestApp creates a basic Fiber app for testing with common configuration
func CreateTestApp(t *testing.T) *fiber.App {
	t.Helper()
	_, err := logger.Init(config.Config{LogLevel: "debug", LogFormat: "text"})
	require.NoError(t, err)

	return fiber.New(fiber.Config{
		ErrorHandler: httperr.Handler,
	})
}

// CreateTestValidator returns the request validator with the password and
// category rules registered.
func CreateTestValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v, err := validation.New()
	require.NoError(t, err)
	require.NoError(t, notes.RegisterCategoryValidator(v))
	return v
}

// CreateTestJWT signs an access token for id with JWTSecret.
func CreateTestJWT(t *testing.T, id auth.Identity, ttl time.Duration) string {
	t.Helper()
	tok, err := auth.NewTokenIssuer(JWTSecret, ttl).Issue(id)
	require.NoError(t, err)
	return tok
}

// CreateJSONRequest creates an HTTP request with JSON body
func CreateJSONRequest(method, url string, body any) *http.Request {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// CreateAuthenticatedRequest creates an HTTP request with Authorization header
func CreateAuthenticatedRequest(method, url string, body any, token string) *http.Request {
	req := CreateJSONRequest(method, url, body)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

// DecodeJSON decodes the response body into a value of type T.
func DecodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}
