package webapp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/ts4z/ggsc/convert"
	"github.com/ts4z/ggsc/he"
	"github.com/ts4z/ggsc/payout"
	"github.com/ts4z/ggsc/paytable"
	"github.com/ts4z/ggsc/urlpath"
)

const (
	prefsCookieName = "ggsc-prefs"
	maxUploadBytes  = 8 << 20
)

// prefs is what the form remembers between visits.
type prefs struct {
	Chips string
	Mode  payout.Mode
}

func (app *App) readPrefs(r *http.Request) prefs {
	p := prefs{Mode: app.defaultMode}
	cookie, err := r.Cookie(prefsCookieName)
	if err != nil {
		return p
	}
	if err := app.prefs.Decode(prefsCookieName, cookie.Value, &p); err != nil {
		log.Printf("disregarding prefs cookie: %v", err)
		return prefs{Mode: app.defaultMode}
	}
	return p
}

func (app *App) writePrefs(w http.ResponseWriter, p prefs) {
	encoded, err := app.prefs.Encode(prefsCookieName, p)
	if err != nil {
		log.Printf("can't encode prefs cookie: %v", err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     prefsCookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   int(app.prefsMaxAge.Seconds()),
		Secure:   app.secureCookies,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (app *App) handleIndex(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	slugs, err := app.storage.FetchStructureSlugs(ctx)
	if err != nil {
		he.SendErrorToHTTPClient(w, "list structures", err)
		return
	}
	data := struct {
		Flash      string
		Error      string
		Prefs      prefs
		Modes      []payout.Mode
		Structures []*paytable.StructureSlug
	}{
		Flash:      r.URL.Query().Get("flash"),
		Error:      r.URL.Query().Get("error"),
		Prefs:      app.readPrefs(r),
		Modes:      payout.Modes,
		Structures: slugs,
	}
	if err := app.templates.ExecuteTemplate(w, "index.html.tmpl", data); err != nil {
		log.Printf("can't render index template: %v", err)
	}
}

func redirectWith(w http.ResponseWriter, r *http.Request, key, msg string) {
	http.Redirect(w, r, "/?"+key+"="+url.QueryEscape(msg), http.StatusSeeOther)
}

// formRequest reads the form.  An uploaded file takes the place of the
// pasted text, and its extension picks the mode if the form didn't.
func formRequest(r *http.Request) (*convert.Request, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return nil, he.New(http.StatusBadRequest, err)
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, he.New(http.StatusBadRequest, err)
	}

	req := &convert.Request{
		TournamentName: r.FormValue("tournament_name"),
		Chips:          strings.TrimSpace(r.FormValue("chips")),
		Data:           []byte(r.FormValue("payouts")),
	}
	if m := r.FormValue("mode"); m != "" {
		mode, err := payout.ParseMode(m)
		if err != nil {
			return nil, he.New(http.StatusBadRequest, fmt.Errorf("%w: %v", convert.ErrUnreadableInput, err))
		}
		req.Mode = mode
	}

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return req, nil
	}
	if err != nil {
		return nil, he.New(http.StatusBadRequest, err)
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return nil, he.New(http.StatusBadRequest, err)
	}
	if len(data) > 0 {
		req.Data = data
		if m := payout.ModeForFilename(header.Filename); m != "" && (req.Mode == "" || req.Mode == payout.ModeStandard) {
			req.Mode = m
		}
	}
	return req, nil
}

func successMessage(out *convert.Outcome) string {
	msg := "Data saved to JSON file successfully at " + out.Location
	if out.Parse.Partial() {
		msg += fmt.Sprintf(" (warning: input was only read up to a problem: %v)", out.Parse.Err)
	}
	return msg
}

func (app *App) handleConvertForm(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	req, err := formRequest(r)
	if err != nil {
		redirectWith(w, r, "error", err.Error())
		return
	}
	out, err := app.converter.Convert(ctx, req)
	if err != nil {
		redirectWith(w, r, "error", err.Error())
		return
	}
	app.writePrefs(w, prefs{Chips: req.Chips, Mode: out.Parse.Mode})
	redirectWith(w, r, "flash", successMessage(out))
}

type apiConvertRequest struct {
	TournamentName string `json:"tournament_name"`
	Chips          string `json:"chips"`
	Mode           string `json:"mode"`
	Payouts        string `json:"payouts"`
}

type apiConvertResponse struct {
	Location     string           `json:"location"`
	Mode         payout.Mode      `json:"mode"`
	Players      *payout.Players  `json:"players"`
	Skipped      int              `json:"skipped"`
	Partial      bool             `json:"partial"`
	PartialError string           `json:"partial_error,omitempty"`
	Export       *paytable.Export `json:"export"`
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("can't write response: %v", err)
	}
}

func (app *App) handleAPIConvert(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	var in apiConvertRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxUploadBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		he.SendErrorToHTTPClient(w, "decode request", he.New(http.StatusBadRequest, err))
		return
	}
	req := &convert.Request{
		TournamentName: in.TournamentName,
		Chips:          strings.TrimSpace(in.Chips),
		Data:           []byte(in.Payouts),
	}
	if in.Mode != "" {
		mode, err := payout.ParseMode(in.Mode)
		if err != nil {
			he.SendErrorToHTTPClient(w, "convert", he.New(http.StatusBadRequest, fmt.Errorf("%w: %v", convert.ErrUnreadableInput, err)))
			return
		}
		req.Mode = mode
	}

	out, err := app.converter.Convert(ctx, req)
	if err != nil {
		he.SendErrorToHTTPClient(w, "convert", err)
		return
	}
	resp := &apiConvertResponse{
		Location: out.Location,
		Mode:     out.Parse.Mode,
		Players:  out.Parse.Players,
		Skipped:  out.Parse.Skipped,
		Partial:  out.Parse.Partial(),
		Export:   out.Export,
	}
	if out.Parse.Partial() {
		resp.PartialError = out.Parse.Err.Error()
	}
	writeJSON(w, resp)
}

func (app *App) handleListStructures(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	slugs, err := app.storage.FetchStructureSlugs(ctx)
	if err != nil {
		he.SendErrorToHTTPClient(w, "list structures", err)
		return
	}
	writeJSON(w, slugs)
}

func (app *App) handleFetchStructure(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	name, ok := urlpath.NamePathValue(w, r)
	if !ok {
		return
	}
	e, err := app.storage.FetchStructure(ctx, name)
	if err != nil {
		he.SendErrorToHTTPClient(w, "fetch structure", err)
		return
	}
	writeJSON(w, e)
}
