package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seuros/covidboard/internal/config"
	"github.com/seuros/covidboard/internal/middleware"
)

const fakeCountries = `[
  {"country": "Italy", "countryInfo": {"iso2": "IT", "lat": 42, "long": 12.5, "flag": "it.png"},
   "cases": 200, "todayCases": 4, "deaths": 30, "recovered": 150},
  {"country": "USA", "countryInfo": {"iso2": "US", "lat": 38, "long": -97, "flag": "us.png"},
   "cases": 9000, "todayCases": 120, "deaths": 90, "recovered": 100},
  {"country": "Diamond Princess", "countryInfo": {"iso2": null, "lat": 0, "long": 0, "flag": "unknown.png"},
   "cases": 712, "todayCases": null, "deaths": 13, "recovered": 699}
]`

// fakeAPI stands in for disease.sh and points config at it.
func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v3/covid-19/all":
			_, _ = w.Write([]byte(`{"cases": 9912, "todayCases": 124, "deaths": 133, "todayDeaths": 2, "recovered": 949, "todayRecovered": 0}`))
		case "/v3/covid-19/countries":
			_, _ = w.Write([]byte(fakeCountries))
		case "/v3/covid-19/countries/IT":
			_, _ = w.Write([]byte(`{"country": "Italy", "countryInfo": {"iso2": "IT", "lat": 42, "long": 12.5},
				"cases": 200, "todayCases": 4, "deaths": 30, "todayDeaths": 1, "recovered": 150, "todayRecovered": 3}`))
		case "/v3/covid-19/historical/all":
			_, _ = w.Write([]byte(`{"cases": {"3/1/20": 10, "3/2/20": 20}, "deaths": {}, "recovered": {}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("API_BASE_URL", srv.URL)
	return srv
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	original := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)

	os.Stdout = w
	fn()
	_ = w.Close()
	os.Stdout = original

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

type stubSource struct {
	source
	pingErr error
}

func (s stubSource) Ping(ctx context.Context) error { return s.pingErr }

func testRequest(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestHandleHealthPayload(t *testing.T) {
	app := fiber.New()
	app.Get("/health", handleHealth)

	_, body := testRequest(t, app, httptest.NewRequest(http.MethodGet, "/health", nil))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "healthy", payload["status"])
	assert.Equal(t, "covidboard", payload["service"])
}

func TestHandleUpReturnsOKWhenUpstreamHealthy(t *testing.T) {
	app := fiber.New()
	app.Get("/up", handleUp(stubSource{}.Ping))

	resp, _ := testRequest(t, app, httptest.NewRequest(http.MethodGet, "/up", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandleUpReturnsServiceUnavailableWhenPingFails(t *testing.T) {
	app := fiber.New()
	app.Get("/up", handleUp(stubSource{pingErr: errors.New("boom")}.Ping))

	resp, _ := testRequest(t, app, httptest.NewRequest(http.MethodGet, "/up", nil))
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestHandleVersionReturnsCurrentVersion(t *testing.T) {
	originalVersion := Version
	Version = "1.2.3"
	t.Cleanup(func() {
		Version = originalVersion
	})

	app := fiber.New()
	app.Get("/api/version", handleVersion)
	_, body := testRequest(t, app, httptest.NewRequest(http.MethodGet, "/api/version", nil))

	var payload map[string]string
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "1.2.3", payload["version"])
}

func TestHandleIndexFillsTemplate(t *testing.T) {
	originalVersion := Version
	Version = "2.0.0"
	t.Cleanup(func() {
		Version = originalVersion
	})

	app := fiber.New()
	app.Get("/", handleIndex([]byte("<title>{{.Title}}</title><span>{{.Version}}</span>")))
	resp, body := testRequest(t, app, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "<title>covidboard</title><span>2.0.0</span>", string(body))
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}

func TestNewAppServesDashboardSession(t *testing.T) {
	fakeAPI(t)
	cfg, err := config.Load()
	require.NoError(t, err)

	app, registry := newApp(cfg, newSource(cfg), []byte("page"))

	resp, body := testRequest(t, app, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, Version, resp.Header.Get("X-Covidboard-Version"))

	var view struct {
		SelectedCountry string `json:"selected_country"`
		Cards           []struct {
			Today string `json:"today"`
			Total string `json:"total"`
		} `json:"cards"`
	}
	require.NoError(t, json.Unmarshal(body, &view))
	assert.Equal(t, "worldwide", view.SelectedCountry)
	require.Len(t, view.Cards, 3)
	assert.Equal(t, "+124", view.Cards[0].Today)
	assert.Equal(t, "9,912", view.Cards[0].Total)

	var session *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookie {
			session = c
		}
	}
	require.NotNil(t, session)

	req := httptest.NewRequest(http.MethodPost, "/api/dashboard/country", strings.NewReader(`{"country":"it"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(session)
	resp, body = testRequest(t, app, req)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), `"selected_country":"IT"`)
	assert.Contains(t, string(body), `"map_zoom":4`)
	assert.Equal(t, 1, registry.Len(), "cookie must reuse the session")
}

func TestNewAppRejectsUntrustedOrigin(t *testing.T) {
	fakeAPI(t)
	cfg, err := config.Load()
	require.NoError(t, err)
	app, registry := newApp(cfg, newSource(cfg), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/dashboard/metric", strings.NewReader(`{"metric":"deaths"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://evil.test")
	resp, _ := testRequest(t, app, req)

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Zero(t, registry.Len(), "rejected requests must not open sessions")
}

func TestCORSOrigins(t *testing.T) {
	assert.Equal(t,
		[]string{"https://localhost", "http://localhost", "https://a.test:8080", "http://a.test:8080"},
		corsOrigins([]string{"localhost", "a.test:8080"}))
	assert.Empty(t, corsOrigins(nil))
}

func TestRunTablePrintsRankedCountries(t *testing.T) {
	fakeAPI(t)
	original := terminalWidth
	terminalWidth = func() int { return 0 }
	t.Cleanup(func() { terminalWidth = original })

	output := captureStdout(t, func() {
		require.NoError(t, runTable(context.Background(), "cases", 0, "table"))
	})

	lines := strings.Split(strings.TrimSpace(output), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "COUNTRY")
	assert.Contains(t, lines[1], "USA")
	assert.Contains(t, lines[1], "9,000")
	assert.Contains(t, lines[1], "+120")
	assert.Contains(t, lines[2], "Diamond Princess")
	assert.Contains(t, lines[3], "Italy")
}

func TestRunTableJSONHonoursMetricAndLimit(t *testing.T) {
	fakeAPI(t)

	output := captureStdout(t, func() {
		require.NoError(t, runTable(context.Background(), "recovered", 2, "json"))
	})

	var entries []TableEntry
	require.NoError(t, json.Unmarshal([]byte(output), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "Diamond Princess", entries[0].Country)
	assert.Equal(t, "Italy", entries[1].Country)
	assert.Equal(t, 2, entries[1].Rank)
}

func TestRunTableCSV(t *testing.T) {
	fakeAPI(t)

	output := captureStdout(t, func() {
		require.NoError(t, runTable(context.Background(), "deaths", 1, "csv"))
	})

	assert.Equal(t, "rank,country,iso_code,cases,today_cases,recovered,deaths\n1,USA,US,9000,120,100,90\n", output)
}

func TestRunTableRejectsBadInput(t *testing.T) {
	fakeAPI(t)

	require.Error(t, runTable(context.Background(), "active", 0, "table"))
	require.Error(t, runTable(context.Background(), "cases", 0, "xml"))
}

func TestRunTableReportsUpstreamFailure(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("API_BASE_URL", "http://127.0.0.1:1")

	err := runTable(context.Background(), "cases", 0, "table")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load countries")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Italy", truncate("Italy", 0))
	assert.Equal(t, "Italy", truncate("Italy", 5))
	assert.Equal(t, "Dia…", truncate("Diamond Princess", 4))
	assert.Equal(t, "Cô…", truncate("Côte d'Ivoire", 3))
}

func TestRunCountryText(t *testing.T) {
	fakeAPI(t)

	output := captureStdout(t, func() {
		require.NoError(t, runCountry(context.Background(), "it", "deaths", "text"))
	})

	assert.Contains(t, output, "Italy (IT)")
	assert.Contains(t, output, "Coronavirus Cases")
	assert.Contains(t, output, "+4 today")
	assert.Contains(t, output, "* Deaths")
}

func TestRunCountryWorldwideJSON(t *testing.T) {
	fakeAPI(t)

	output := captureStdout(t, func() {
		require.NoError(t, runCountry(context.Background(), "worldwide", "cases", "json"))
	})

	var report CountryReport
	require.NoError(t, json.Unmarshal([]byte(output), &report))
	assert.Equal(t, "Worldwide", report.Country)
	require.Len(t, report.Cards, 3)
	assert.Equal(t, "9,912", report.Cards[0].Total)
	assert.Equal(t, "0", report.Cards[1].Today)
}

func TestRunCountryRejectsBadSelection(t *testing.T) {
	fakeAPI(t)

	require.Error(t, runCountry(context.Background(), "Italy", "cases", "text"))
	require.Error(t, runCountry(context.Background(), "it", "active", "text"))
}

func TestDoctorChecks(t *testing.T) {
	srv := fakeAPI(t)
	dataDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "GeoLite2-City.mmdb"), []byte("stub"), 0o644))

	cfg := &config.Config{
		APIBaseURL:     srv.URL,
		DataDir:        dataDir,
		RequestTimeout: 2 * time.Second,
		TrustedOrigins: []string{"localhost"},
	}

	results := doctorChecks(context.Background(), cfg, newSource(cfg))

	require.Len(t, results, 5)
	for _, r := range results {
		assert.True(t, r.Pass, "%s: %s", r.Name, r.Error)
	}
	assert.Equal(t, "3 countries, 1 without ISO code", results[4].Details)
}

func TestDoctorChecksSkipPayloadsWhenUnreachable(t *testing.T) {
	cfg := &config.Config{
		APIBaseURL:     "http://127.0.0.1:1",
		DataDir:        filepath.Join(t.TempDir(), "missing"),
		RequestTimeout: time.Second,
	}

	results := doctorChecks(context.Background(), cfg, newSource(cfg))

	require.Len(t, results, 4)
	for _, r := range results {
		assert.False(t, r.Pass, r.Name)
	}
	assert.Equal(t, "Verify API_BASE_URL and outbound network access", results[3].Suggestion)
}

func TestOutputDoctorJSON(t *testing.T) {
	output := captureStdout(t, func() {
		outputDoctorJSON([]CheckResult{{Name: "Statistics API", Pass: true}})
	})

	var results []CheckResult
	require.NoError(t, json.Unmarshal([]byte(output), &results))
	require.Len(t, results, 1)
	assert.True(t, results[0].Pass)
}

func TestRunHealthcheck(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/up", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(ok.Close)
	require.NoError(t, runHealthcheck(ok.URL+"/up"))

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(down.Close)
	err := runHealthcheck(down.URL + "/up")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}
