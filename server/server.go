package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/amonks/albumengine/data"
	"github.com/amonks/albumengine/request"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// Catalog is what the server needs from catalog.Service.
type Catalog interface {
	Artists(ctx context.Context, name string) ([]data.Artist, error)
	TopAlbums(ctx context.Context, amgID int64) ([]data.Album, error)
}

// Pinger is a dependency /healthz checks; *cachestore.Redis is one.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	Router  *chi.Mux
	catalog Catalog
	cache   Pinger
}

// New routes requests to catalog. If cache is non-nil, /healthz fails while
// it can't be reached.
func New(catalog Catalog, cache Pinger, log zerolog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(hlog.NewHandler(log))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("")
	}))
	r.Use(hlog.RequestIDHandler("req_id", "Request-Id"))
	r.Use(chimw.Recoverer)

	s := &Server{Router: r, catalog: catalog, cache: cache}

	r.Get("/healthz", s.handleHealth)
	r.Get("/artist/name/{name}", s.handleArtists)
	r.Get("/artist/{amgId}/album/top", s.handleTopAlbums)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.cache != nil {
		if err := s.cache.Ping(r.Context()); err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("cache unreachable")
			writeJSON(w, r, http.StatusServiceUnavailable, message{"cache unavailable"})
			return
		}
	}
	w.Write([]byte("ok"))
}

func (s *Server) handleArtists(w http.ResponseWriter, r *http.Request) {
	artists, err := s.catalog.Artists(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, artists)
}

func (s *Server) handleTopAlbums(w http.ResponseWriter, r *http.Request) {
	amgID, err := strconv.ParseInt(chi.URLParam(r, "amgId"), 10, 64)
	if err != nil {
		writeJSON(w, r, http.StatusBadRequest, message{"amgId must be an integer"})
		return
	}
	albums, err := s.catalog.TopAlbums(r.Context(), amgID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, albums)
}

type message struct {
	Message string `json:"message"`
}

// fail reports upstream failures as 502s and anything else as a 500. The
// details only go to the log.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	hlog.FromRequest(r).Error().Err(err).Msg("request failed")
	if errors.Is(err, request.ErrFetch) {
		writeJSON(w, r, http.StatusBadGateway, message{"upstream catalog unavailable"})
		return
	}
	writeJSON(w, r, http.StatusInternalServerError, message{"internal server error"})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("error writing response")
	}
}

// Run serves handler on addr until ctx is done, then shuts down gracefully.
func Run(ctx context.Context, handler http.Handler, addr string) error {
	srv := http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() { errs <- srv.ListenAndServe() }()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
