package handlers

import (
	"io"
	"net/http"
)

// HandleRobotsTXT keeps crawlers out; nothing here is worth indexing.
func HandleRobotsTXT(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	data := []string{
		"User-agent: *",
		"Disallow: /",
	}
	for _, line := range data {
		io.WriteString(w, line+"\r\n")
	}
}

// HandleHealthz answers load balancer health checks.
func HandleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	io.WriteString(w, "ok\n")
}
