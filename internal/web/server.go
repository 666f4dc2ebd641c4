package web

import (
	"bufio"
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/rs/cors"
	"github.com/vbonduro/pingallery/internal/collection"
	"github.com/vbonduro/pingallery/internal/describe"
	"github.com/vbonduro/pingallery/internal/domain"
	"github.com/vbonduro/pingallery/internal/unsplash"
)

type photoSource interface {
	Search(ctx context.Context, params unsplash.SearchParams) (*domain.SearchResult, error)
	Photo(ctx context.Context, id string) (*domain.Photo, error)
}

type collectionStore interface {
	List(ctx context.Context) []domain.Collection
	Get(ctx context.Context, id string) (*domain.Collection, error)
	Create(ctx context.Context, name, description string, photos ...domain.Photo) (*domain.Collection, error)
	AddPhoto(ctx context.Context, collectionID string, photo domain.Photo) (*domain.Collection, error)
	RemovePhoto(ctx context.Context, collectionID, photoID string) (*domain.Collection, error)
	Update(ctx context.Context, collectionID string, patch collection.Patch) (*domain.Collection, error)
	Delete(ctx context.Context, collectionID string) error
}

// changeNotifier is told after every successful collection write so live
// sessions can reload.
type changeNotifier interface {
	CollectionsChanged()
}

type Server struct {
	photos      photoSource
	collections collectionStore
	describer   describe.Describer
	notifier    changeNotifier
	live        http.Handler
	mux         *http.ServeMux
	cors        *cors.Cors
	logger      *slog.Logger
}

// NewServer builds the HTTP API. describer and live may be nil, which turns
// off collection descriptions and the /ws endpoint respectively.
func NewServer(photos photoSource, collections collectionStore, describer describe.Describer,
	notifier changeNotifier, live http.Handler, logger *slog.Logger) *Server {
	s := &Server{
		photos:      photos,
		collections: collections,
		describer:   describer,
		notifier:    notifier,
		live:        live,
		mux:         http.NewServeMux(),
		cors: cors.New(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{
				http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
			},
			AllowedHeaders: []string{"Content-Type"},
		}),
		logger: logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("GET /api/photos", s.handleListPhotos)
	s.mux.HandleFunc("GET /api/photos/{id}", s.handleGetPhoto)

	s.mux.HandleFunc("GET /api/collections", s.handleListCollections)
	s.mux.HandleFunc("POST /api/collections", s.handleCreateCollection)
	s.mux.HandleFunc("GET /api/collections/{id}", s.handleGetCollection)
	s.mux.HandleFunc("PUT /api/collections/{id}", s.handleUpdateCollection)
	s.mux.HandleFunc("DELETE /api/collections/{id}", s.handleDeleteCollection)
	s.mux.HandleFunc("POST /api/collections/{id}/photos", s.handleAddPhoto)
	s.mux.HandleFunc("DELETE /api/collections/{id}/photos/{photoId}", s.handleRemovePhoto)
	s.mux.HandleFunc("POST /api/collections/{id}/describe", s.handleDescribeCollection)

	s.mux.HandleFunc("/api/", s.handleAPINotFound)

	if s.live != nil {
		s.mux.Handle("GET /ws", s.live)
	}
}

// securityHeaders sets browser hardening headers on every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets WebSocket upgrades pass through the logger.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	conn, rw, err := http.NewResponseController(r.ResponseWriter).Hijack()
	if err == nil {
		r.status = http.StatusSwitchingProtocols
	}
	return conn, rw, err
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestLogger(s.logger, s.cors.Handler(securityHeaders(s.mux))).ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAPINotFound(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusNotFound, errorResponse{
		Error:  "API endpoint not found",
		Path:   r.URL.Path,
		Method: r.Method,
	})
}
