// Package app wires configuration, storage and HTTP handlers into the
// intake server process.
package app

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/DAVIDafergan/tatpro-intake/internal/adapters/pdf"
	"github.com/DAVIDafergan/tatpro-intake/internal/adapters/xlsx"
	"github.com/DAVIDafergan/tatpro-intake/internal/admin"
	"github.com/DAVIDafergan/tatpro-intake/internal/config"
	"github.com/DAVIDafergan/tatpro-intake/internal/handlers"
	"github.com/DAVIDafergan/tatpro-intake/internal/ports"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	cfg   config.Config
	store ports.DocumentStore
	http  *http.Server
}

// NewServer opens the store and builds the handler tree. It does not listen.
func NewServer(ctx context.Context, cfg config.Config) (*Server, error) {
	for _, d := range cfg.Diagnostics() {
		slog.Warn(d)
	}
	key := []byte(cfg.AdminTokenSecret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate token key: %w", err)
		}
	}

	tag := cfg.Tag()
	var pdfOpts []pdf.Option
	if cfg.PDFFont != "" {
		pdfOpts = append(pdfOpts, pdf.WithFont(cfg.PDFFont))
	}

	store := OpenStore(ctx, cfg)
	h := handlers.New(store,
		admin.NewSecretChecker(cfg.AdminCode),
		admin.NewTokens(key, cfg.AdminTokenTTL),
		handlers.WithLocale(tag),
		handlers.WithStaticDir(cfg.StaticDir),
		handlers.WithReports(xlsx.New(tag, nil), pdf.New(tag, pdfOpts...)),
	)
	return &Server{
		cfg:   cfg,
		store: store,
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           h.Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

func (s *Server) Handler() http.Handler { return s.http.Handler }

// Run listens on the configured port until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.http.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then drains
// in-flight requests and closes the store.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	log.Printf("TAT PRO intake server running on http://localhost:%s", s.cfg.Port)
	log.Printf("Store: %s", s.cfg.Store)

	errc := make(chan error, 1)
	go func() { errc <- s.http.Serve(ln) }()

	select {
	case err := <-errc:
		if cerr := s.store.Close(); cerr != nil {
			slog.Warn("close store", "err", cerr)
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := s.http.Shutdown(shutdownCtx)
	if serveErr := <-errc; serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		err = errors.Join(err, serveErr)
	}
	if cerr := s.store.Close(); cerr != nil {
		slog.Warn("close store", "err", cerr)
	}
	slog.Info("server stopped")
	return err
}
