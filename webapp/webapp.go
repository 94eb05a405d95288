package webapp

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/jonboulle/clockwork"
	"github.com/rs/cors"

	"github.com/ts4z/ggsc/app/handlers"
	"github.com/ts4z/ggsc/assets"
	"github.com/ts4z/ggsc/convert"
	"github.com/ts4z/ggsc/dep"
	"github.com/ts4z/ggsc/he"
	"github.com/ts4z/ggsc/middleware"
	"github.com/ts4z/ggsc/password"
	"github.com/ts4z/ggsc/payout"
	"github.com/ts4z/ggsc/state"
	"github.com/ts4z/ggsc/varz"
)

var authFailures = varz.NewCounter("auth_failures_total", "requests refused for a missing or wrong password")

// Config holds the configuration for creating a new App.
type Config struct {
	Converter *convert.Converter
	Storage   state.StructureStorage
	Clock     clockwork.Clock

	// AllowedOrigins may call the API from a browser.
	AllowedOrigins []string

	CookieHashKey  []byte
	CookieBlockKey []byte
	PrefsMaxAge    time.Duration
	SecureCookies  bool

	// PasswordHash, when set, protects conversion with HTTP basic auth.
	PasswordHash string

	DefaultMode payout.Mode
}

// App is the web front end.
type App struct {
	templates *template.Template

	// dependencies
	converter *convert.Converter
	storage   state.StructureStorage
	clock     clockwork.Clock
	prefs     *securecookie.SecureCookie
	checker   *password.Checker

	prefsMaxAge   time.Duration
	secureCookies bool
	defaultMode   payout.Mode

	// internals
	mux     *http.ServeMux
	handler http.Handler
}

// New creates an App.  It fails if the password hash can't be decoded.
func New(ctx context.Context, config *Config) (*App, error) {
	app := &App{
		converter:     dep.Required(config.Converter),
		storage:       dep.Required(config.Storage),
		clock:         dep.Required(config.Clock),
		prefs:         securecookie.New(config.CookieHashKey, config.CookieBlockKey),
		prefsMaxAge:   config.PrefsMaxAge,
		secureCookies: config.SecureCookies,
		defaultMode:   config.DefaultMode,
		mux:           http.NewServeMux(),
	}
	if app.defaultMode == "" {
		app.defaultMode = payout.ModeStandard
	}
	app.prefs.MaxAge(int(app.prefsMaxAge.Seconds()))

	if config.PasswordHash != "" {
		checker, err := password.NewChecker(config.PasswordHash)
		if err != nil {
			return nil, err
		}
		app.checker = checker
	}

	// Stack the handlers together.
	csp := http.NewCrossOriginProtection()
	for _, origin := range config.AllowedOrigins {
		if err := csp.AddTrustedOrigin(origin); err != nil {
			return nil, fmt.Errorf("bad allowed origin %q: %w", origin, err)
		}
		log.Printf("CORS allowing origin %s", origin)
	}
	logger := middleware.NewRequestLogger(csp.Handler(app.mux), app.clock)
	corsMW := cors.New(cors.Options{
		AllowedOrigins:   config.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	app.handler = corsMW.Handler(logger)

	if err := app.loadTemplates(); err != nil {
		return nil, err
	}
	app.InstallHandlers()

	return app, nil
}

// Handler returns the configured HTTP handler.
func (app *App) Handler() http.Handler {
	return app.handler
}

func (app *App) loadTemplates() error {
	var err error
	if app.templates, err = template.New("root").ParseFS(assets.Templates, "templates/*[^~]"); err != nil {
		return fmt.Errorf("error loading embedded templates: %w", err)
	}
	for _, tmpl := range app.templates.Templates() {
		log.Printf("loaded template %q", tmpl.Name())
	}
	return nil
}

func (app *App) handleFunc(pattern string, handler func(context.Context, http.ResponseWriter, *http.Request)) {
	app.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		handler(r.Context(), w, r)
	})
}

// requiringPasswordHandleFunc is handleFunc behind basic auth, when a
// password is configured.  Any user name is accepted.
func (app *App) requiringPasswordHandleFunc(pattern string, handler func(context.Context, http.ResponseWriter, *http.Request)) {
	app.handleFunc(pattern, func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		if app.checker != nil {
			_, pw, ok := r.BasicAuth()
			if !ok || app.checker.Validate(pw) != nil {
				authFailures.Inc()
				w.Header().Set("WWW-Authenticate", `Basic realm="ggsc"`)
				he.SendErrorToHTTPClient(w, "authorize", he.HTTPCodedErrorf(http.StatusUnauthorized, "password required"))
				return
			}
		}
		handler(ctx, w, r)
	})
}

// InstallHandlers registers all HTTP routes.
func (app *App) InstallHandlers() {
	app.handleFunc("GET /{$}", app.handleIndex)
	app.requiringPasswordHandleFunc("POST /convert", app.handleConvertForm)

	app.requiringPasswordHandleFunc("POST /api/convert", app.handleAPIConvert)
	app.handleFunc("GET /api/structures", app.handleListStructures)
	app.handleFunc("GET /api/structures/{name}", app.handleFetchStructure)

	app.mux.Handle("GET /metrics", varz.Handler())
	app.mux.HandleFunc("GET /robots.txt", handlers.HandleRobotsTXT)
	app.mux.HandleFunc("GET /healthz", handlers.HandleHealthz)
}

// Wrapper to just return the input context.
func contextualizer(ctx context.Context) func(net.Listener) context.Context {
	return func(_ net.Listener) context.Context {
		return ctx
	}
}

// Serve runs the HTTP server until it fails or ctx is done.
func (app *App) Serve(ctx context.Context, listenAddress string) error {
	server := &http.Server{
		Addr:         listenAddress,
		Handler:      app.handler,
		BaseContext:  contextualizer(ctx),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	ch := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", listenAddress)
		ch <- server.ListenAndServe()
	}()

	select {
	case err := <-ch:
		return fmt.Errorf("server exited: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		if err := <-ch; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
