package controllers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/livehaul-backend/api/responses"
	"github.com/angelmondragon/livehaul-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/livehaul-backend/pkg/errors"
	"github.com/angelmondragon/livehaul-backend/pkg/logger"
)

const (
	envHeader         = "X-LiveHaul-Env"
	readinessDeadline = 2 * time.Second
)

// Pinger is a dependency probed by the readiness check.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the database and redis in parallel and reports 503 when
// either is unreachable. A nil redis pinger is skipped.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbPinger, redisPinger Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessDeadline)
		defer cancel()

		checks := map[string]Pinger{"database": dbPinger, "redis": redisPinger}
		statuses := make(map[string]string, len(checks))
		var mu sync.Mutex

		var g errgroup.Group
		for name, p := range checks {
			if p == nil {
				mu.Lock()
				statuses[name] = "skipped"
				mu.Unlock()
				continue
			}
			name, p := name, p
			g.Go(func() error {
				err := p.Ping(ctx)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					statuses[name] = "down"
					return err
				}
				statuses[name] = "up"
				return nil
			})
		}
		firstErr := g.Wait()

		if firstErr != nil {
			err := pkgerrors.Wrap(pkgerrors.CodeDependency, firstErr, "dependency unavailable").
				WithDetails(statuses)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": statuses})
	}
}
