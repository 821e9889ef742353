package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/speccom/fieldproof-backend/api/responses"
	"github.com/speccom/fieldproof-backend/pkg/config"
	"github.com/speccom/fieldproof-backend/pkg/db"
	pkgerrors "github.com/speccom/fieldproof-backend/pkg/errors"
	"github.com/speccom/fieldproof-backend/pkg/logger"
	"github.com/speccom/fieldproof-backend/pkg/redis"
	"github.com/speccom/fieldproof-backend/pkg/storage/gcs"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-FieldProof-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings each wired dependency in turn; a nil pinger is
// skipped so binaries can wire only what they use.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger, gcsP gcs.Pinger, pubsubP pinger) http.HandlerFunc {
	type check struct {
		name string
		dep  pinger
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-FieldProof-Env", cfg.App.Env)
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]string{}
		for _, c := range []check{
			{"database", dbP},
			{"redis", redisP},
			{"storage", gcsP},
			{"pubsub", pubsubP},
		} {
			if c.dep == nil {
				continue
			}
			if err := c.dep.Ping(ctx); err != nil {
				checks[c.name] = err.Error()
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, c.name+" unavailable").WithDetails(checks))
				return
			}
			checks[c.name] = "ok"
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
