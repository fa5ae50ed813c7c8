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
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/sirseerhq/sirseer-board/internal/board"
	relaierrors "github.com/sirseerhq/sirseer-board/internal/errors"
	"go.uber.org/zap"
)

// Error codes returned in the error envelope.
const (
	codeTeamNotFound  = "TEAM_NOT_FOUND"
	codeInvalidFilter = "INVALID_FILTER"
	codeInvalidTarget = "INVALID_TARGET"
	codeInternal      = "INTERNAL"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: errorBody{Code: code, Message: message}})
}

type teamsResponse struct {
	Teams []string `json:"teams"`
}

// pullRequestsResponse is one rendered board.
type pullRequestsResponse struct {
	ID        string               `json:"id"`
	Team      string               `json:"team"`
	Buckets   []board.Bucket       `json:"buckets"`
	Failures  []board.BatchFailure `json:"failures,omitempty"`
	Partial   bool                 `json:"partial"`
	AllFailed bool                 `json:"all_failed"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

func (s *Server) listTeams(w http.ResponseWriter, r *http.Request) {
	teams := s.teams.Teams()
	if teams == nil {
		teams = []string{}
	}
	render.JSON(w, r, teamsResponse{Teams: teams})
}

func (s *Server) teamPullRequests(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "team")
	log := s.log.With(
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.String("team", name),
	)

	filters, err := board.ParseFilters(r.URL.Query()["filter"])
	if err != nil {
		writeError(w, r, http.StatusBadRequest, codeInvalidFilter, err.Error())
		return
	}

	team, err := s.teams.ResolveTeam(name)
	if err != nil {
		if errors.Is(err, relaierrors.ErrTeamNotFound) {
			writeError(w, r, http.StatusNotFound, codeTeamNotFound, err.Error())
			return
		}
		log.Error("failed to resolve team", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, codeInternal, "failed to resolve team")
		return
	}

	b, err := board.AggregateTeamPullRequests(r.Context(), s.client, team, s.opts...)
	if err != nil {
		if errors.Is(err, relaierrors.ErrInvalidTarget) {
			writeError(w, r, http.StatusUnprocessableEntity, codeInvalidTarget, err.Error())
			return
		}
		log.Error("aggregation failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, codeInternal, "aggregation failed")
		return
	}

	result := b.PullRequests()
	s.metrics.Observe(team.Name, result)

	buckets := result.Display(team.Repositories, team.Members, filters)
	render.JSON(w, r, pullRequestsResponse{
		ID:        result.ID,
		Team:      team.Name,
		Buckets:   buckets,
		Failures:  result.Failures,
		Partial:   result.Partial(),
		AllFailed: result.AllFailed(),
	})
}
