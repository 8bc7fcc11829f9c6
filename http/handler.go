package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sagarc03/bucketfront"
)

type Service interface {
	Serve(ctx context.Context, method, path string, header http.Header) (*bucketfront.Response, error)
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled" yaml:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods" yaml:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers" yaml:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers" yaml:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials" yaml:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age" yaml:"max_age"`
}

type HandlerConfig struct {
	// RootRedirect, when set, answers GET / with a 303 to this URL instead
	// of serving the root index.
	RootRedirect string
	CORS         CORSConfig
	// Middlewares run after request id, logging and recovery, before CORS.
	Middlewares []func(http.Handler) http.Handler
}

// Handler serves bucket objects over HTTP.
type Handler struct {
	config  HandlerConfig
	service Service
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	return &Handler{
		config:  *config,
		service: service,
	}
}

// Router returns an http.Handler answering GET and HEAD for every path.
// Other methods get 405.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(h.config.Middlewares...)

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	if h.config.RootRedirect != "" {
		r.Get("/", h.handleRootRedirect)
		r.Head("/", h.handleRootRedirect)
	}

	r.Get("/*", h.handleServe)
	r.Head("/*", h.handleServe)

	return r
}

func (h *Handler) handleRootRedirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.config.RootRedirect, http.StatusSeeOther)
}

func (h *Handler) handleServe(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Serve(r.Context(), r.Method, r.URL.Path, r.Header)
	if err != nil {
		HandleError(w, err)
		return
	}

	WriteResponse(w, resp)
}
