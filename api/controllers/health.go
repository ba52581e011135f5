package controllers

import (
	"net/http"

	"github.com/cafemenu/cafemenu-backend/api/responses"
	"github.com/cafemenu/cafemenu-backend/pkg/config"
	"github.com/cafemenu/cafemenu-backend/pkg/db"
	pkgerrors "github.com/cafemenu/cafemenu-backend/pkg/errors"
	"github.com/cafemenu/cafemenu-backend/pkg/logger"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CafeMenu-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the database; a failing ping reports the service as not
// ready so load balancers stop routing to it.
func HealthReady(cfg *config.Config, dbClient *db.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CafeMenu-Env", cfg.App.Env)

		if dbClient == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "database unavailable"))
			return
		}
		if err := dbClient.Ping(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database ping failed"))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
