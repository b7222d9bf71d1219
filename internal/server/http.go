package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/zeusync/pitchsim/internal/core/observability/log"
	"github.com/zeusync/pitchsim/internal/core/physics"
	"github.com/zeusync/pitchsim/internal/core/pitch"
	"github.com/zeusync/pitchsim/pkg/generic"
)

var bufferPool = generic.NewPool(
	func() *bytes.Buffer { return new(bytes.Buffer) },
	func(b *bytes.Buffer) { b.Reset() },
)

type curveResponse struct {
	Divisions int            `json:"divisions"`
	Points    []physics.Vec3 `json:"points"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snap, err := s.runner.Snapshot(r.Context())
	if err != nil {
		s.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleCurve(w http.ResponseWriter, r *http.Request) {
	div := s.config.CurveDivisions
	if q := r.URL.Query().Get("divisions"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "divisions must be a positive integer"})
			return
		}
		div = n
	}

	points, err := s.runner.Curve(r.Context(), div)
	if err != nil {
		s.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}
	if points == nil {
		points = []physics.Vec3{}
	}
	s.writeJSON(w, http.StatusOK, curveResponse{Divisions: div, Points: points})
}

func (s *Server) handleProfiles(w http.ResponseWriter, _ *http.Request) {
	canned := pitch.CannedProfiles()
	out := make([]pitch.Profile, 0, len(canned))
	for _, typ := range pitch.CannedTypes() {
		out = append(out, canned[typ])
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	buf := bufferPool.Get()
	defer bufferPool.Put(buf)

	if err := json.NewEncoder(buf).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", log.Error(err))
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Debug("Failed to write response", log.Error(err))
	}
}
