package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seuros/covidboard/internal/dashboard"
	"github.com/seuros/covidboard/internal/stats"
)

type stubFetcher struct {
	inits int
}

func (s *stubFetcher) Global(ctx context.Context) (stats.CountryRecord, error) {
	s.inits++
	return stats.CountryRecord{Cases: stats.CountOf(10)}, nil
}

func (s *stubFetcher) Countries(ctx context.Context) ([]stats.CountryRecord, error) {
	return []stats.CountryRecord{}, nil
}

func (s *stubFetcher) Country(ctx context.Context, code string) (stats.CountryRecord, error) {
	return stats.CountryRecord{}, nil
}

func (s *stubFetcher) History(ctx context.Context, days int) (stats.Timeline, error) {
	return stats.Timeline{}, nil
}

func newOriginApp() *fiber.App {
	app := fiber.New()
	app.Use(TrustedOrigin([]string{"dashboard.example.com", "localhost"}))
	app.Get("/read", func(c fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Post("/write", func(c fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	return app
}

func TestTrustedOrigin(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		origin string
		want   int
	}{
		{"safe method ignores origin", http.MethodGet, "/read", "https://evil.test", http.StatusOK},
		{"missing origin passes", http.MethodPost, "/write", "", http.StatusOK},
		{"trusted origin", http.MethodPost, "/write", "https://dashboard.example.com", http.StatusOK},
		{"trusted host any port", http.MethodPost, "/write", "http://localhost:5173", http.StatusOK},
		{"same origin", http.MethodPost, "/write", "http://example.com", http.StatusOK},
		{"foreign origin", http.MethodPost, "/write", "https://evil.test", http.StatusForbidden},
		{"garbage origin", http.MethodPost, "/write", "null", http.StatusForbidden},
	}

	app := newOriginApp()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func newSessionApp(fetcher *stubFetcher) (*fiber.App, *dashboard.Registry) {
	registry := dashboard.NewRegistry(time.Hour, func() *dashboard.Coordinator {
		return dashboard.NewCoordinator(fetcher, dashboard.WithLogger(zap.NewNop()))
	})

	app := fiber.New()
	app.Use(Session(SessionConfig{Registry: registry, TTL: time.Hour}))
	app.Get("/", func(c fiber.Ctx) error {
		coordinator := GetCoordinator(c)
		if coordinator == nil {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.JSON(coordinator.Snapshot().CountryInfo.Cases)
	})
	return app, registry
}

func TestSessionCreatesAndReusesCoordinator(t *testing.T) {
	fetcher := &stubFetcher{}
	app, registry := newSessionApp(fetcher)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var sessionID string
	for _, cookie := range resp.Cookies() {
		if cookie.Name == SessionCookie {
			sessionID = cookie.Value
			assert.True(t, cookie.HttpOnly)
		}
	}
	_, err = uuid.Parse(sessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.inits)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: sessionID})
	resp2, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp2.Body.Close() }()

	assert.Equal(t, 1, fetcher.inits, "existing session must not reload")
	assert.Equal(t, 1, registry.Len())
}

func TestSessionReplacesInvalidCookie(t *testing.T) {
	fetcher := &stubFetcher{}
	app, registry := newSessionApp(fetcher)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "not-a-uuid"})
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, registry.Len())
}

func TestGetCoordinatorWithoutSession(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c fiber.Ctx) error {
		assert.Nil(t, GetCoordinator(c))
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestOriginMatcher(t *testing.T) {
	matches := OriginMatcher([]string{"Dashboard.Example.com", "localhost", "127.0.0.1:8080"})

	assert.True(t, matches("https://dashboard.example.com"))
	assert.True(t, matches("http://localhost:3000"))
	assert.True(t, matches("http://127.0.0.1:8080"))
	assert.False(t, matches("http://127.0.0.1:9090"))
	assert.False(t, matches("https://example.com"))
	assert.False(t, matches("null"))
	assert.False(t, matches(""))
}
