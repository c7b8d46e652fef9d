package ui

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dashlab/internal/cache"
	"dashlab/internal/config"
	"dashlab/internal/logging"
	"dashlab/internal/session"
)

func newTestServer(t *testing.T, secrets *config.Secrets) *Server {
	t.Helper()
	if secrets == nil {
		secrets = &config.Secrets{Connections: map[string]config.Connection{}}
	}
	cfg := &config.Config{
		Server:  config.ServerConfig{Port: "0", GinMode: gin.TestMode},
		Data:    config.DataConfig{SecretsFile: "secrets.toml"},
		Session: config.SessionConfig{CookieName: "dashlab_session"},
		Secrets: secrets,
	}
	store := session.NewMemoryStore(time.Hour)
	s, err := NewServer(cfg, store, cache.New(time.Minute), cache.New(time.Minute), logging.New(logging.LevelError))
	require.NoError(t, err)
	return s
}

type testClient struct {
	s       *Server
	cookies []*http.Cookie
}

func (tc *testClient) do(method, target string, header map[string]string, form url.Values) *httptest.ResponseRecorder {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	for _, c := range tc.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	tc.s.router.ServeHTTP(w, req)
	if got := w.Result().Cookies(); len(got) > 0 {
		tc.cookies = got
	}
	return w
}

func (tc *testClient) get(target string) *httptest.ResponseRecorder {
	return tc.do(http.MethodGet, target, nil, nil)
}

func TestIndexListsLabs(t *testing.T) {
	tc := &testClient{s: newTestServer(t, nil)}
	w := tc.get("/")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Dashboard Labs")
	for _, lab := range labs {
		assert.Contains(t, body, lab.Path)
	}
}

func TestRunCounterClimbsPerSession(t *testing.T) {
	tc := &testClient{s: newTestServer(t, nil)}

	w := tc.get("/concepts")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "run #1")
	require.NotEmpty(t, tc.cookies, "first response should set the session cookie")

	w = tc.get("/concepts")
	assert.Contains(t, w.Body.String(), "run #2")

	// A different browser starts at one.
	other := &testClient{s: tc.s}
	w = other.get("/concepts")
	assert.Contains(t, w.Body.String(), "run #1")
}

func TestPersistentCounter(t *testing.T) {
	tc := &testClient{s: newTestServer(t, nil)}
	tc.get("/concepts")

	w := tc.do(http.MethodPost, "/concepts/counter", nil, url.Values{"action": {"increment"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	w = tc.do(http.MethodPost, "/concepts/counter", nil, url.Values{"action": {"increment"}})
	require.Equal(t, http.StatusSeeOther, w.Code)

	body := tc.get("/concepts").Body.String()
	assert.Contains(t, body, `<p class="metric-value">2</p>`)

	w = tc.do(http.MethodPost, "/concepts/counter", nil, url.Values{"action": {"reset"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	body = tc.get("/concepts").Body.String()
	assert.Contains(t, body, `<p class="metric-value">0</p>`)
}

func TestConceptsFormBatchedSum(t *testing.T) {
	tc := &testClient{s: newTestServer(t, nil)}

	body := tc.get("/concepts?a=1200&b=300").Body.String()
	assert.Contains(t, body, "A + B = 1,500")

	body = tc.get("/concepts?a=12&b=oops").Body.String()
	assert.Contains(t, body, "both fields must be numbers")
}

func TestFormattingPage(t *testing.T) {
	tc := &testClient{s: newTestServer(t, nil)}
	w := tc.get("/formatting")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Metric tiles in columns")
	assert.Contains(t, body, "Total Sales")
	assert.Contains(t, body, "Status boxes")
}

func TestChartsGallery(t *testing.T) {
	tc := &testClient{s: newTestServer(t, nil)}
	w := tc.get("/charts")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "vega-lite/v5.json")
	assert.Contains(t, body, "Flips by city")
	assert.Contains(t, body, "Beds × baths")
	assert.Contains(t, body, "vegaEmbed")
}

func TestCachingPageReportsHitState(t *testing.T) {
	tc := &testClient{s: newTestServer(t, nil)}

	body := tc.get("/caching").Body.String()
	assert.Contains(t, body, "computed")
	assert.Contains(t, body, "source: synthetic")

	body = tc.get("/caching").Body.String()
	assert.Contains(t, body, "cache hit")
}

func TestCityFragment(t *testing.T) {
	tc := &testClient{s: newTestServer(t, nil)}

	w := tc.do(http.MethodGet, "/caching/city/Seattle", map[string]string{"HX-Request": "true"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "fragment run #1")
	assert.Contains(t, body, "Seattle monthly prices")
	assert.NotContains(t, body, "<html", "fragments are partials, not full pages")

	// The fragment keeps its own counter.
	w = tc.do(http.MethodGet, "/caching/city/Kent", map[string]string{"HX-Request": "true"}, nil)
	assert.Contains(t, w.Body.String(), "fragment run #2")

	// Without htmx the endpoint falls back to the full page.
	w = tc.do(http.MethodGet, "/caching/city/Seattle", nil, nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)

	w = tc.do(http.MethodGet, "/caching/city/Nowhere", map[string]string{"HX-Request": "true"}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFiltersLive(t *testing.T) {
	tc := &testClient{s: newTestServer(t, nil)}

	body := tc.get("/filters").Body.String()
	assert.Contains(t, body, "540 of 540 rows match")

	body = tc.get("/filters?cat=Alpha").Body.String()
	assert.Contains(t, body, "180 of 540 rows match")

	body = tc.get("/filters?cat=Alpha&cat=Beta").Body.String()
	assert.Contains(t, body, "360 of 540 rows match")
}

func TestFiltersFormRemembersLastApplied(t *testing.T) {
	tc := &testClient{s: newTestServer(t, nil)}
	tc.get("/filters/form")

	body := tc.get("/filters/form").Body.String()
	assert.Contains(t, body, "No filters applied yet")

	w := tc.do(http.MethodPost, "/filters/form", nil, url.Values{"cat": {"Alpha"}})
	require.Equal(t, http.StatusSeeOther, w.Code)

	body = tc.get("/filters/form").Body.String()
	assert.Contains(t, body, "last applied filter set")
	assert.Contains(t, body, "180 of 540 rows match")

	w = tc.do(http.MethodPost, "/filters/form", nil, url.Values{"action": {"clear"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	body = tc.get("/filters/form").Body.String()
	assert.Contains(t, body, "No filters applied yet")
}

func TestFiltersPlacement(t *testing.T) {
	tc := &testClient{s: newTestServer(t, nil)}
	w := tc.get("/filters/placement?cat=Gamma")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "sidebar")
	assert.Contains(t, body, "180 of 540 rows match")
}

func TestInteractivityThreshold(t *testing.T) {
	tc := &testClient{s: newTestServer(t, nil)}
	w := tc.get("/interactivity")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Flips at or above")

	w = tc.get("/interactivity?threshold=900000")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "$900,000")
}

func TestWidgetsCoercion(t *testing.T) {
	tc := &testClient{s: newTestServer(t, nil)}

	body := tc.get("/interactivity/widgets?number=%241%2C200&date=2024-03-01").Body.String()
	assert.Contains(t, body, "1,200")
	assert.Contains(t, body, "2024-03-01")

	body = tc.get("/interactivity/widgets?number=garbage&date=whenever").Body.String()
	assert.Contains(t, body, "missing (unparseable)")
}

func TestSecretsUnconfigured(t *testing.T) {
	tc := &testClient{s: newTestServer(t, nil)}
	w := tc.get("/secrets")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No spreadsheet connection configured")
}

func TestSecretsLiveConnection(t *testing.T) {
	csv := "city,price,sold_date\nKent,450000,2024-01-15\nRenton,505000,2024-02-15\n"
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(csv)) //nolint:errcheck
	}))
	defer remote.Close()

	secrets := &config.Secrets{
		Connections: map[string]config.Connection{
			"sheets": {Spreadsheet: remote.URL, Password: "hunter2hunter2"},
		},
	}
	tc := &testClient{s: newTestServer(t, secrets)}
	w := tc.get("/secrets")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Connected: fetched 2 rows")
	assert.Contains(t, body, "connections.sheets")
	assert.NotContains(t, body, "hunter2hunter2", "secrets must render redacted")
}

func TestSecretsBrokenConnectionHalts(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer remote.Close()

	secrets := &config.Secrets{
		Connections: map[string]config.Connection{
			"sheets": {Spreadsheet: remote.URL},
		},
	}
	tc := &testClient{s: newTestServer(t, secrets)}
	w := tc.get("/secrets")
	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Rendering stopped")
}

func TestStaticAndErrorAssets(t *testing.T) {
	tc := &testClient{s: newTestServer(t, nil)}
	w := tc.get("/static/style.css")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "--accent")
}
