package webapp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ts4z/ggsc/convert"
	"github.com/ts4z/ggsc/password"
	"github.com/ts4z/ggsc/payout"
	"github.com/ts4z/ggsc/state"
)

var (
	testHashKey  = bytes.Repeat([]byte("h"), 64)
	testBlockKey = bytes.Repeat([]byte("b"), 32)
)

func newTestApp(t *testing.T, passwordHash string) (*App, string) {
	t.Helper()
	dir := t.TempDir()
	st := state.NewFileStorage(dir)
	clock := clockwork.NewFakeClock()
	app, err := New(context.Background(), &Config{
		Converter:      convert.NewConverter(st, clock, payout.ModeStandard),
		Storage:        st,
		Clock:          clock,
		CookieHashKey:  testHashKey,
		CookieBlockKey: testBlockKey,
		PrefsMaxAge:    24 * time.Hour,
		PasswordHash:   passwordHash,
		DefaultMode:    payout.ModeStandard,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return app, dir
}

func serve(app *App, r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	app.Handler().ServeHTTP(w, r)
	return w
}

func apiConvert(t *testing.T, app *App, body apiConvertRequest) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	r := httptest.NewRequest(http.MethodPost, "/api/convert", bytes.NewReader(data))
	r.Header.Set("Content-Type", "application/json")
	return serve(app, r)
}

func TestIndex(t *testing.T) {
	app, _ := newTestApp(t, "")
	w := serve(app, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"GG Structure Creator", `name="tournament_name"`, `<option value="pko"`} {
		if !strings.Contains(body, want) {
			t.Errorf("index lacks %q", want)
		}
	}
}

func TestAPIConvert(t *testing.T) {
	app, dir := newTestApp(t, "")
	w := apiConvert(t, app, apiConvertRequest{
		TournamentName: "Sunday Major",
		Chips:          "50000",
		Payouts:        "1\nAlice\n$100.00\n2\nBob\n$50.00",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", w.Code, w.Body.String())
	}
	var resp struct {
		Location string `json:"location"`
		Mode     string `json:"mode"`
		Partial  bool   `json:"partial"`
		Export   struct {
			Structures []struct {
				Prizes map[string]float64 `json:"prizes"`
			} `json:"structures"`
		} `json:"export"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if want := filepath.Join(dir, "Sunday Major.json"); resp.Location != want {
		t.Errorf("location = %q, want %q", resp.Location, want)
	}
	if resp.Mode != "standard" || resp.Partial {
		t.Errorf("mode = %q, partial = %v", resp.Mode, resp.Partial)
	}
	if got := resp.Export.Structures[0].Prizes["2"]; got != 50 {
		t.Errorf("prize for 2 = %v", got)
	}
	if _, err := os.Stat(resp.Location); err != nil {
		t.Errorf("saved file: %v", err)
	}
}

func TestAPIConvertErrors(t *testing.T) {
	tests := []struct {
		name     string
		req      apiConvertRequest
		wantCode int
	}{
		{
			name:     "missing chips",
			req:      apiConvertRequest{TournamentName: "T", Payouts: "1\nA\n$1.00"},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "illegal name",
			req:      apiConvertRequest{TournamentName: "a|b", Chips: "10", Payouts: "1\nA\n$1.00"},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "unknown mode",
			req:      apiConvertRequest{TournamentName: "T", Chips: "10", Mode: "bounty", Payouts: "1\nA\n$1.00"},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "zero prize",
			req:      apiConvertRequest{TournamentName: "T", Chips: "10", Mode: "pko", Payouts: "1\nA\nTicket"},
			wantCode: http.StatusUnprocessableEntity,
		},
		{
			name:     "nothing parsed",
			req:      apiConvertRequest{TournamentName: "T", Chips: "10", Payouts: "just words"},
			wantCode: http.StatusUnprocessableEntity,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := newTestApp(t, "")
			w := apiConvert(t, app, tt.req)
			if w.Code != tt.wantCode {
				t.Errorf("status = %d, want %d (body %q)", w.Code, tt.wantCode, w.Body.String())
			}
		})
	}
}

func TestAPIConvertRejectsUnknownFields(t *testing.T) {
	app, _ := newTestApp(t, "")
	r := httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader(`{"tournament":"x"}`))
	if w := serve(app, r); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestFetchStructure(t *testing.T) {
	app, _ := newTestApp(t, "")
	if w := apiConvert(t, app, apiConvertRequest{TournamentName: "Daily", Chips: "100", Payouts: "1\nA\n$3.00"}); w.Code != http.StatusOK {
		t.Fatalf("convert status = %d", w.Code)
	}

	tests := []struct {
		path     string
		wantCode int
	}{
		{path: "/api/structures/Daily", wantCode: http.StatusOK},
		{path: "/api/structures/Nightly", wantCode: http.StatusNotFound},
		{path: "/api/structures/a*b", wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := serve(app, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if w.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", w.Code, tt.wantCode)
			}
		})
	}

	w := serve(app, httptest.NewRequest(http.MethodGet, "/api/structures", nil))
	if !strings.Contains(w.Body.String(), `"name":"Daily"`) {
		t.Errorf("listing = %q", w.Body.String())
	}
}

func TestConvertFormRemembersPrefs(t *testing.T) {
	app, _ := newTestApp(t, "")
	form := url.Values{
		"tournament_name": {"Form Cup"},
		"chips":           {"20000"},
		"mode":            {"pko"},
		"payouts":         {"1\nAlice\n$5.00 $40.00 $5.00"},
	}
	r := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := serve(app, r)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}
	if loc := w.Header().Get("Location"); !strings.HasPrefix(loc, "/?flash=") {
		t.Errorf("Location = %q", loc)
	}
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != prefsCookieName {
		t.Fatalf("cookies = %v", cookies)
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(cookies[0])
	body := serve(app, r).Body.String()
	if !strings.Contains(body, `value="20000"`) {
		t.Errorf("index doesn't remember chips")
	}
	if !strings.Contains(body, `<option value="pko" selected>`) {
		t.Errorf("index doesn't remember mode")
	}
}

func TestConvertFormError(t *testing.T) {
	app, _ := newTestApp(t, "")
	form := url.Values{"tournament_name": {"X"}, "chips": {"lots"}, "payouts": {"1\nA\n$1.00"}}
	r := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := serve(app, r)
	if loc := w.Header().Get("Location"); !strings.HasPrefix(loc, "/?error=") {
		t.Errorf("Location = %q, want an error redirect", loc)
	}
}

func TestConvertFormUpload(t *testing.T) {
	app, dir := newTestApp(t, "")
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	mw.WriteField("tournament_name", "Upload Cup")
	mw.WriteField("chips", "3000")
	fw, err := mw.CreateFormFile("file", "payouts.csv")
	if err != nil {
		t.Fatal(err)
	}
	io.WriteString(fw, "Place,Player,Prize\n1,Alice,$300.00\n2,Bob,$100.00\n")
	mw.Close()

	r := httptest.NewRequest(http.MethodPost, "/convert", body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	w := serve(app, r)
	if loc := w.Header().Get("Location"); !strings.HasPrefix(loc, "/?flash=") {
		t.Fatalf("Location = %q", loc)
	}
	if _, err := os.Stat(filepath.Join(dir, "Upload Cup.json")); err != nil {
		t.Errorf("saved file: %v", err)
	}
}

func TestPasswordRequired(t *testing.T) {
	app, _ := newTestApp(t, password.Hash("s3cret"))
	body := apiConvertRequest{TournamentName: "Locked", Chips: "10", Payouts: "1\nA\n$1.00"}

	if w := apiConvert(t, app, body); w.Code != http.StatusUnauthorized {
		t.Errorf("no password: status = %d, want 401", w.Code)
	}

	data, _ := json.Marshal(body)
	r := httptest.NewRequest(http.MethodPost, "/api/convert", bytes.NewReader(data))
	r.SetBasicAuth("anyone", "s3cret")
	if w := serve(app, r); w.Code != http.StatusOK {
		t.Errorf("right password: status = %d, want 200", w.Code)
	}

	// Reading doesn't need the password.
	if w := serve(app, httptest.NewRequest(http.MethodGet, "/api/structures", nil)); w.Code != http.StatusOK {
		t.Errorf("listing: status = %d", w.Code)
	}
}

func TestMetrics(t *testing.T) {
	app, _ := newTestApp(t, "")
	apiConvert(t, app, apiConvertRequest{TournamentName: "M", Chips: "10", Payouts: "1\nA\n$1.00"})
	w := serve(app, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(w.Body.String(), `ggsc_convert_conversions_total{mode="standard",result="saved"}`) {
		t.Errorf("metrics lack the conversion counter")
	}
}
