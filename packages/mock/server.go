package mock

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"
)

const shutdownTimeout = 5 * time.Second

// Server serves a Handler on a TCP port
type Server struct {
	handler *Handler
	port    int
	verbose bool
}

func NewServer(opts ...Option) *Server {
	c := newConfig(opts)
	return &Server{
		handler: newHandler(c),
		port:    c.port,
		verbose: c.verbose,
	}
}

func (s *Server) Handler() *Handler {
	return s.handler
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("listening on port %d: %w", s.port, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Printf("Mock GIRAF API listening on http://%s", ln.Addr())
	log.Printf("Routes loaded: %d", len(s.handler.Routes()))
	if s.verbose {
		for _, route := range s.handler.Routes() {
			log.Printf("  %s %s", route.Method, route.PathPattern)
		}
	}

	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
