// Package server provides an HTTP REST server that normalizes context-free
// grammars and keeps the results.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/dekarrin/chomsky/server/api"
	"github.com/dekarrin/chomsky/server/cnfs"
	"github.com/dekarrin/chomsky/server/dao"
)

// server:
//   POST   /normalize       - normalizes a grammar and returns it; nothing is stored.
//   POST   /grammars        - normalizes a grammar and stores both forms.
//   GET    /grammars        - gets all stored grammars.
//   GET    /grammars/{id}   - gets one stored grammar.
//   DELETE /grammars/{id}   - deletes a stored grammar.
//   GET    /info            - gets version info and the limits of the server.

// Server is an HTTP REST server that normalizes grammars. The zero-value of a
// Server should not be used directly; call New() to get one ready for use.
type Server struct {
	cfg     Config
	db      dao.Store
	handler http.Handler
	http    *http.Server
}

// New creates a new Server from cfg. Unset values in cfg are given their
// defaults before it is validated.
func New(cfg Config) (*Server, error) {
	cfg = cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	db, err := cfg.DB.Connect()
	if err != nil {
		return nil, fmt.Errorf("connect to DB: %w", err)
	}

	a := api.API{
		Backend: cnfs.Service{
			DB:             db,
			MaxRules:       limit(cfg.MaxRules),
			IterationLimit: limit(cfg.IterationLimit),
		},
	}

	var maxBody int64
	if cfg.MaxBodyBytes > 0 {
		maxBody = cfg.MaxBodyBytes
	}

	srv := &Server{
		cfg:     cfg,
		db:      db,
		handler: newRouter(a, maxBody),
	}
	srv.http = &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           srv.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv, nil
}

// Config returns the config the server is using with all defaults filled in.
func (srv *Server) Config() Config {
	return srv.cfg
}

// Handler returns the http.Handler that routes all requests to the server.
func (srv *Server) Handler() http.Handler {
	return srv.handler
}

// ServeForever begins listening on the configured address for HTTP REST client
// requests. It returns only once the server is shut down by a call to Close,
// in which case the returned error is nil, or fails to listen.
func (srv *Server) ServeForever() error {
	log.Printf("INFO  Listening on %s", srv.cfg.ListenAddress)
	err := srv.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Close stops the server, if it is listening, and closes its DB. A Server
// cannot be used again after it is closed.
func (srv *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	shutdownErr := srv.http.Shutdown(ctx)

	if err := srv.db.Close(); err != nil {
		return fmt.Errorf("close DB: %w", err)
	}
	return shutdownErr
}
