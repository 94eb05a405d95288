// Package middleware holds http.Handler wrappers shared by the web app.
package middleware

import (
	"log"
	"net/http"
	"time"

	"github.com/ts4z/ggsc/varz"
)

var requests = varz.NewCounterVec("http_requests_total", "requests served, by status code class", "class")

type Clock interface {
	Now() time.Time
}

// RequestLogger logs one access line per request.
type RequestLogger struct {
	next  http.Handler
	clock Clock
}

func NewRequestLogger(next http.Handler, clock Clock) *RequestLogger {
	return &RequestLogger{next: next, clock: clock}
}

func remoteAddr(r *http.Request) string {
	if r.Header.Get("X-Forwarded-For") != "" {
		return r.Header.Get("X-Forwarded-For")
	}
	return r.RemoteAddr
}

func codeClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

func (rl *RequestLogger) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := rl.clock.Now()
	ww := &codeWatcher{w: w}
	rl.next.ServeHTTP(ww, r)
	code := ww.Code()
	duration := rl.clock.Now().Sub(start)
	requests.WithLabelValues(codeClass(code)).Inc()
	log.Printf("[access log] %d %v %v (%v)", code, remoteAddr(r), r.URL.Path, duration)
}

var _ http.ResponseWriter = &codeWatcher{}

// codeWatcher is a http.ResponseWriter that captures the status code for logging.
type codeWatcher struct {
	code *int
	w    http.ResponseWriter
}

func (cw *codeWatcher) Header() http.Header {
	return cw.w.Header()
}

func (cw *codeWatcher) Write(b []byte) (int, error) {
	if cw.code == nil {
		cw.WriteHeader(http.StatusOK)
	}
	return cw.w.Write(b)
}

func (cw *codeWatcher) WriteHeader(statusCode int) {
	if cw.code != nil {
		return
	}
	cw.code = &statusCode
	cw.w.WriteHeader(statusCode)
}

func (cw *codeWatcher) Code() int {
	if cw.code != nil {
		return *cw.code
	}
	return http.StatusOK
}
