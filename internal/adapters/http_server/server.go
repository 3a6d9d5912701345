package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

const defaultRequestTimeout = 15 * time.Second

// Server is the chi router of the rates API. Unknown routes and methods
// answer with problem+json like every other error.
type Server struct{ mux *chi.Mux }

type Option func(*options)

type options struct {
	requestTimeout time.Duration
}

// WithRequestTimeout bounds every request's context; d <= 0 keeps the default.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.requestTimeout = d
		}
	}
}

func New(opts ...Option) *Server {
	o := options{requestTimeout: defaultRequestTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	m := chi.NewRouter()
	// middlewares must be registered before any route
	m.Use(
		chimw.RealIP,
		chimw.RequestID,
		chimw.Recoverer,
		Timeout(o.requestTimeout),
		Metrics,
		Logger(log.Logger),
	)
	m.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, http.StatusNotFound, "Not Found", "no route for "+r.URL.Path)
	})
	m.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, http.StatusMethodNotAllowed, "Method Not Allowed", r.Method+" is not supported on "+r.URL.Path)
	})

	return &Server{mux: m}
}

func (s *Server) Mux() http.Handler { return s.mux }

// Mount serves h under path, outside the versioned API (e.g. /metrics).
func (s *Server) Mount(path string, h http.Handler) {
	s.mux.Handle(path, h)
}
