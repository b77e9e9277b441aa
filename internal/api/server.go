package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"pagepack/internal/config"
	"pagepack/internal/db"
	"pagepack/internal/logger"
	"pagepack/internal/pack"
)

// Server is the HTTP surface in front of the pack coordinator.
type Server struct {
	coord   *pack.Coordinator
	db      *db.DB
	version string
}

// NewServer creates a Server over the given coordinator and database.
func NewServer(coord *pack.Coordinator, database *db.DB, version string) *Server {
	return &Server{coord: coord, db: database, version: version}
}

// Handler returns the HTTP handler with all routes and CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("POST /scrape", s.handleScrape)
	return corsMiddleware(mux)
}

type scrapeRequest struct {
	Domain  string                 `json:"domain"`
	Pages   []pack.PageRequest     `json:"pages"`
	Mode    string                 `json:"mode"` // accepted for forward compatibility
	Options map[string]interface{} `json:"options"`
}

type scrapeResponse struct {
	Domain        string           `json:"domain"`
	CheckedAt     float64          `json:"checked_at"`
	CacheHit      bool             `json:"cache_hit"`
	UnchangedURLs []string         `json:"unchanged_urls"`
	ChangedPages  []pack.Page      `json:"changed_pages"`
	Errors        []pack.PageError `json:"errors"`
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid json")
		return
	}
	if req.Domain == "" {
		writeError(w, 400, "domain is required")
		return
	}

	opts := config.DecodeOptions(req.Options)

	// A rebuild runs to completion even if the client goes away; the domain
	// lock must not stay held hostage to an abandoned connection.
	res, err := s.coord.BuildOrFetchPack(context.Background(), req.Domain, req.Pages, opts)
	if err != nil {
		logger.Error("Scrape", fmt.Sprintf("%s: %v", req.Domain, err))
		writeError(w, 500, err.Error())
		return
	}

	writeJSON(w, scrapeResponse{
		Domain:        req.Domain,
		CheckedAt:     float64(time.Now().UnixNano()) / 1e9,
		CacheHit:      res.CacheHit,
		UnchangedURLs: res.UnchangedURLs,
		ChangedPages:  res.Pages,
		Errors:        res.Errors,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	dbStatus := "ok"
	if s.db == nil {
		dbStatus = "absent"
	} else if err := s.db.Ping(); err != nil {
		dbStatus = err.Error()
	}
	writeJSON(w, map[string]string{
		"status":  "ok",
		"version": s.version,
		"db":      dbStatus,
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(204)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
