package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/covid-charts/internal/covid/sources"
	"github.com/i474232898/covid-charts/internal/fetch"
	"github.com/i474232898/covid-charts/internal/session"
	"github.com/i474232898/covid-charts/internal/view"
	"github.com/i474232898/covid-charts/web"
)

const globalBody = `{
  "Canada": [{"date":"2020-1-22","confirmed":1,"deaths":0,"recovered":0},
             {"date":"2020-1-23","confirmed":3,"deaths":1,"recovered":0}],
  "United Kingdom": [{"date":"2020-1-22","confirmed":2,"deaths":0,"recovered":0}]
}`

type upstream struct {
	mu      sync.Mutex
	regions []string
	srv     *httptest.Server
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()
	u := &upstream{}
	mux := http.NewServeMux()
	mux.HandleFunc("/timeseries.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, globalBody)
	})
	mux.HandleFunc("/api/confirmed", func(w http.ResponseWriter, r *http.Request) {
		region := r.URL.Query().Get("regions")
		u.mu.Lock()
		u.regions = append(u.regions, region)
		u.mu.Unlock()
		_, _ = io.WriteString(w, `{"regions":{"`+region+`":{"start":"2020-03-01","cases":[1,2,5]}}}`)
	})
	u.srv = httptest.NewServer(mux)
	t.Cleanup(u.srv.Close)
	return u
}

func (u *upstream) Regions() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.regions...)
}

func newTestApp(t *testing.T, u *upstream) *fiber.App {
	t.Helper()

	client := u.srv.Client()
	global := sources.NewGlobalSource(client, u.srv.URL+"/timeseries.json", sources.HTTPClientConfig{})
	canada := sources.NewCanadaSource(client, u.srv.URL+"/api/confirmed", sources.HTTPClientConfig{})

	store := session.NewStore(func() *view.Page {
		return view.NewPage(context.Background(), global, canada, view.Defaults{})
	}, 10, time.Hour)

	app := fiber.New(fiber.Config{
		Views:        web.NewEngine(),
		ErrorHandler: ErrorHandler,
	})
	RegisterRoutes(app, store, 2*time.Second)
	return app
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == SessionCookie {
			return c
		}
	}
	return nil
}

func TestIndexRendersBothSections(t *testing.T) {
	app := newTestApp(t, newUpstream(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if sessionCookie(resp) == nil {
		t.Fatalf("expected a session cookie")
	}

	body, _ := io.ReadAll(resp.Body)
	html := string(body)
	for _, want := range []string{
		"Covid-19 in Canada",
		"Covid-19 in Quebec",
		"Choose a country:",
		"Choose a province:",
		">British Columbia</option>",
		">United Kingdom</option>",
		"country-chart",
		"province-chart",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("page does not contain %q", want)
		}
	}
}

func TestIndexSelectionKeepsSession(t *testing.T) {
	u := newUpstream(t)
	app := newTestApp(t, u)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cookie := sessionCookie(resp)

	req := httptest.NewRequest(http.MethodGet, "/?province=British+Columbia", nil)
	req.AddCookie(cookie)
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if sessionCookie(resp) != nil {
		t.Fatalf("expected the existing session to be reused")
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Covid-19 in British Columbia") {
		t.Fatalf("expected decoded province heading")
	}

	got := u.Regions()
	want := []string{"Quebec", "British Columbia"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("expected upstream requests %v, got %v", want, got)
	}
}

func TestIndexUnknownProvince(t *testing.T) {
	app := newTestApp(t, newUpstream(t))

	req := httptest.NewRequest(http.MethodGet, "/?province=Atlantis", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
}

func TestViewAPI(t *testing.T) {
	app := newTestApp(t, newUpstream(t))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/views/province?region=Nova+Scotia", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var m struct {
		State   string `json:"state"`
		Heading string `json:"heading"`
		Series  []struct {
			Date      string `json:"date"`
			Confirmed int    `json:"confirmed"`
		} `json:"series"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.State != fetch.Ready.String() {
		t.Fatalf("expected ready state, got %q", m.State)
	}
	if m.Heading != "Covid-19 in Nova Scotia" {
		t.Fatalf("unexpected heading %q", m.Heading)
	}
	if len(m.Series) != 3 || m.Series[2].Date != "2020-03-03" || m.Series[2].Confirmed != 5 {
		t.Fatalf("unexpected series %+v", m.Series)
	}
}

func TestViewAPIValidation(t *testing.T) {
	app := newTestApp(t, newUpstream(t))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/views/planet", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestRefreshRedirects(t *testing.T) {
	app := newTestApp(t, newUpstream(t))

	req := httptest.NewRequest(http.MethodPost, "/refresh", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, resp.StatusCode)
	}
}
