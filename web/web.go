// Package web embeds the static assets the quote view pages are served from.
package web

import (
	_ "embed"
	"net/http"
)

//go:embed static/cotizacion-view.html
var viewShell []byte

// ViewShell serves the client-side quote view page. The page resolves the
// quote id from its own URL and loads the data over the JSON API.
func ViewShell() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(viewShell)
	}
}
