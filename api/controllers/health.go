package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/frimousse/patisserie-backend/api/responses"
	"github.com/frimousse/patisserie-backend/pkg/config"
	pkgerrors "github.com/frimousse/patisserie-backend/pkg/errors"
	"github.com/frimousse/patisserie-backend/pkg/logger"
)

// Pinger is the health check surface of the database client.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frimousse-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when every wired dependency answers a
// ping. Nil pingers are skipped so the handler works for both backends.
func HealthReady(cfg *config.Config, logg *logger.Logger, db, storage Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frimousse-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]Pinger{"database": db, "storage": storage}
		for name, pinger := range checks {
			if pinger == nil {
				continue
			}
			if err := pinger.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unreachable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
