// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirseerhq/sirseer-board/internal/board"
	"github.com/sirseerhq/sirseer-board/internal/github"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// TeamResolver turns a team name into the input of an aggregation run.
type TeamResolver interface {
	ResolveTeam(name string) (board.Team, error)
	Teams() []string
}

// Server serves team boards.
type Server struct {
	teams   TeamResolver
	client  github.Client
	opts    []board.Option
	log     *zap.Logger
	metrics *Metrics
	router  chi.Router
}

// New creates a Server. opts are applied to every aggregation run.
func New(teams TeamResolver, client github.Client, log *zap.Logger, opts ...board.Option) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		teams:   teams,
		client:  client,
		log:     log.Named("server"),
		metrics: NewMetrics(prometheus.NewRegistry()),
	}
	s.opts = append([]board.Option{board.WithLogger(log)}, opts...)
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	// Recovery goes first so it also covers the other middleware.
	r.Use(Recovery(s.log))
	r.Use(middleware.RequestID)
	r.Use(Logging(s.log))

	r.Get("/health", s.health)
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	r.Route("/api/teams", func(r chi.Router) {
		r.Get("/", s.listTeams)
		r.Get("/{team}/pull-requests", s.teamPullRequests)
	})

	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run listens on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("address", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.log.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
