package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/hyperjump/termground/internal/errs"
	"github.com/hyperjump/termground/internal/models"
	"github.com/hyperjump/termground/internal/search"
)

const maxBody = 8 << 20

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(v); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *Server) handleGround(w http.ResponseWriter, r *http.Request) {
	var req models.GroundRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.logger.Debug("ground request", zap.String("text", req.Text), zap.Bool("context", req.Context != ""))
	resp, err := s.service.Ground(r.Context(), &req)
	if err != nil {
		s.fail(w, "ground", err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGroundBatch(w http.ResponseWriter, r *http.Request) {
	var req models.BatchGroundRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.logger.Debug("batch ground request", zap.Int("texts", len(req.Texts)))
	results, err := s.service.GroundBatch(r.Context(), &req)
	if err != nil {
		s.fail(w, "batch ground", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	var req models.LookupRequest
	if !s.decode(w, r, &req) {
		return
	}
	terms, err := s.service.Lookup(&req)
	if err != nil {
		s.fail(w, "lookup", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"terms": terms, "total": len(terms)})
}

func (s *Server) handleDisambiguate(w http.ResponseWriter, r *http.Request) {
	var req models.DisambiguateRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.logger.Debug("disambiguate request", zap.String("shortform", req.Shortform), zap.Int("matches", len(req.Matches)))
	matches, err := s.service.Disambiguate(r.Context(), &req)
	if err != nil {
		s.fail(w, "disambiguate", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"matches": matches})
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		s.respondError(w, http.StatusBadRequest, "q is required")
		return
	}
	n, ok := s.intParam(w, r, "n")
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"suggestions": s.service.Suggest(q, n)})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	limit, ok := s.intParam(w, r, "limit")
	if !ok {
		return
	}
	q := search.Query{
		Text:      r.URL.Query().Get("q"),
		Limit:     limit,
		Namespace: r.URL.Query().Get("namespace"),
		Fuzzy:     r.URL.Query().Get("fuzzy") == "true",
		Semantic:  r.URL.Query().Get("semantic") == "true",
	}
	resp, err := s.service.Search(r.Context(), &q)
	if err != nil {
		s.fail(w, "search", err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	infos := s.service.Models()
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"models": infos, "total": len(infos)})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.service.Status())
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Reload(r.Context()); err != nil {
		s.fail(w, "reload", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "reloaded", "snapshot": s.service.Status().Snapshot})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		s.respondError(w, http.StatusBadRequest, name+" must be a non-negative integer")
		return 0, false
	}
	return n, true
}

// fail maps service errors to status codes. Validation problems are the
// caller's fault; everything else is logged.
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, errs.ErrValidation):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrNotFound):
		s.respondError(w, http.StatusNotFound, err.Error())
	default:
		s.logger.Error(op+" failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
