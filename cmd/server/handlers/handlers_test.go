package handlers

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"note-shelf/cmd/server/middlewares"
	"note-shelf/cmd/server/testutil"
	"note-shelf/internal/services/auth"
)

func TestHealthz(t *testing.T) {
	up := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name    string
		pingers map[string]Pinger
		want    int
	}{
		{"no dependencies", nil, 200},
		{"all up", map[string]Pinger{"store": up, "cache": up}, 200},
		{"store down", map[string]Pinger{"store": down, "cache": up}, 503},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := testutil.CreateTestApp(t)
			app.Get("/healthz", Healthz(tt.pingers))

			resp, err := app.Test(httptest.NewRequest("GET", "/healthz", nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)

			body := testutil.DecodeJSON[map[string]string](t, resp)
			if tt.want == 200 {
				assert.Equal(t, "ok", body["status"])
			} else {
				assert.Equal(t, "down", body["status"])
				assert.NotContains(t, body["error"], "refused")
			}
		})
	}
}

func TestMe(t *testing.T) {
	app := testutil.CreateTestApp(t)
	app.Get("/me", middlewares.JWT([]byte(testutil.JWTSecret)), Me)

	id := auth.Identity{UserID: "01J0F7A1B2C3D4E5F6G7H8J9KM", Email: "me@example.com"}
	token := testutil.CreateTestJWT(t, id, time.Hour)

	resp, err := app.Test(testutil.CreateAuthenticatedRequest("GET", "/me", nil, token), -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, id, testutil.DecodeJSON[auth.Identity](t, resp))

	resp, err = app.Test(testutil.CreateJSONRequest("GET", "/me", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}
