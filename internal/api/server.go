package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/prodbot/internal/service"
)

// Server provides the operational HTTP surface: health check, metrics
// and a read-only view of a family's products for debugging.
type Server struct {
	svc    *service.Service
	logger *logrus.Logger
	mux    *http.ServeMux
}

// NewServer creates a Server, registers all routes, and returns it.
func NewServer(svc *service.Service, logger *logrus.Logger) *Server {
	s := &Server{svc: svc, logger: logger, mux: http.NewServeMux()}
	s.routes()
	return s
}

// Handler returns the http.Handler that can be passed to http.Server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.Handle("GET /metrics", promhttp.Handler())
	s.mux.HandleFunc("GET /api/products", s.handleGetProducts)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.logger.WithError(err).Error("failed to encode JSON response")
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleGetProducts returns the active products of one family.
// GET /api/products?family=<id>[&expired=true]
func (s *Server) handleGetProducts(w http.ResponseWriter, r *http.Request) {
	family, err := strconv.ParseInt(r.URL.Query().Get("family"), 10, 64)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "family query parameter is required")
		return
	}
	expiredOnly := r.URL.Query().Get("expired") == "true"

	products, err := s.svc.ActiveProducts(r.Context(), family, expiredOnly)
	if err != nil {
		s.logger.WithError(err).Error("failed to list products")
		s.respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.respondJSON(w, http.StatusOK, products)
}
