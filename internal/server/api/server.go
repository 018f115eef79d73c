// Package api exposes the blog over HTTP: the GraphQL endpoint, image
// uploads and the static image route.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gopherblog/internal/logging"
	"github.com/dmitrijs2005/gopherblog/internal/server/config"
	"github.com/dmitrijs2005/gopherblog/internal/server/images"
	"github.com/dmitrijs2005/gopherblog/internal/server/services"
	"github.com/gorilla/mux"
	graphql "github.com/graph-gophers/graphql-go"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

type Server struct {
	address       string
	logger        logging.Logger
	schema        *graphql.Schema
	images        *services.ImageService
	store         images.Store
	jwtSecret     []byte
	development   bool
	maxUploadSize int64
}

func NewServer(cfg *config.Config, l logging.Logger, us *services.UserService, ps *services.PostService, is *services.ImageService, store images.Store) (*Server, error) {
	logger := l.With("module", "http_server")

	schema, err := parseSchema(&rootResolver{users: us, posts: ps}, logger)
	if err != nil {
		return nil, err
	}

	return &Server{
		address:       cfg.EndpointAddrHTTP,
		logger:        logger,
		schema:        schema,
		images:        is,
		store:         store,
		jwtSecret:     []byte(cfg.SecretKey),
		development:   cfg.IsDevelopment(),
		maxUploadSize: cfg.MaxImageSize,
	}, nil
}

// Router returns the complete handler: routes wrapped in recovery, request
// logging, CORS and authentication, outermost first.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/graphql", s.handleGraphQL).Methods(http.MethodPost)
	r.HandleFunc("/post-image", s.handleUpload).Methods(http.MethodPut)
	r.PathPrefix("/" + images.Prefix).Handler(http.StripPrefix("/"+images.Prefix, s.store)).Methods(http.MethodGet, http.MethodHead)

	r.NotFoundHandler = routeError(http.StatusNotFound, "Not found")
	r.MethodNotAllowedHandler = routeError(http.StatusMethodNotAllowed, "Method not allowed")

	return s.recoverPanics(s.logRequests(cors(s.authenticate(r))))
}

// Run serves until ctx is cancelled, then shuts down gracefully. It fails
// only when the address cannot be bound or serving breaks.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
