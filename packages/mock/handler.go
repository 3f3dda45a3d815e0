package mock

import (
	"log"
	"net/http"
	"time"
)

// Handler is an in-memory stand-in for the GIRAF REST API
type Handler struct {
	router     *Router
	store      *Store
	apiVersion string
	delay      time.Duration
	verbose    bool
}

// Option is a functional option for Handler and Server
type Option func(*config)

type config struct {
	port       int
	delay      time.Duration
	verbose    bool
	apiVersion string
	seed       *Seed
}

// WithPort sets the server port
func WithPort(port int) Option {
	return func(c *config) {
		c.port = port
	}
}

// WithDelay adds a delay to all responses
func WithDelay(delay time.Duration) Option {
	return func(c *config) {
		c.delay = delay
	}
}

// WithVerbose logs every request
func WithVerbose(verbose bool) Option {
	return func(c *config) {
		c.verbose = verbose
	}
}

// WithAPIVersion sets the path prefix, "v1" by default
func WithAPIVersion(version string) Option {
	return func(c *config) {
		if version != "" {
			c.apiVersion = version
		}
	}
}

// WithSeed replaces the built-in seed data
func WithSeed(seed *Seed) Option {
	return func(c *config) {
		c.seed = seed
	}
}

func newConfig(opts []Option) *config {
	c := &config{port: 5000, apiVersion: "v1"}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewHandler builds a handler over a fresh store. It panics only if the
// embedded seed is invalid.
func NewHandler(opts ...Option) *Handler {
	return newHandler(newConfig(opts))
}

func newHandler(c *config) *Handler {
	seed := c.seed
	if seed == nil {
		var err error
		seed, err = DefaultSeed()
		if err != nil {
			panic(err)
		}
	}

	h := &Handler{
		router:     NewRouter(),
		store:      NewStore(seed),
		apiVersion: c.apiVersion,
		delay:      c.delay,
		verbose:    c.verbose,
	}

	v := "/" + h.apiVersion
	h.router.Handle("POST", v+"/Account/login", "login", h.login)
	h.router.Handle("POST", v+"/Account/register", "register", h.register)
	h.router.Handle("GET", v+"/User", "current user", h.getCurrentUser)
	h.router.Handle("GET", v+"/User/{id}", "user", h.getUser)
	h.router.Handle("GET", v+"/WeekTemplate", "list templates", h.listTemplates)
	h.router.Handle("POST", v+"/WeekTemplate", "create template", h.createTemplate)
	h.router.Handle("GET", v+"/WeekTemplate/{id}", "get template", h.getTemplate)
	h.router.Handle("PUT", v+"/WeekTemplate/{id}", "update template", h.updateTemplate)
	h.router.Handle("DELETE", v+"/WeekTemplate/{id}", "delete template", h.deleteTemplate)
	return h
}

// Store exposes the handler's state, e.g. to Reset it between runs
func (h *Handler) Store() *Store {
	return h.store
}

func (h *Handler) Routes() []*Route {
	return h.router.Routes()
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.delay > 0 {
		time.Sleep(h.delay)
	}

	sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
	route, params, pathFound := h.router.Match(r.Method, r.URL.Path)
	switch {
	case route != nil:
		route.Handler(sw, r, params)
	case pathFound:
		writeError(sw, http.StatusMethodNotAllowed, MethodNotAllowed, "Method not allowed")
	default:
		writeError(sw, http.StatusNotFound, NotFound, "No such endpoint")
	}

	if h.verbose {
		log.Printf("%s %s -> %d (%s)", r.Method, r.URL.Path, sw.status, time.Since(start))
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
