package app

import (
	"context"
	"fmt"
	"net"
	"path/filepath"
	"strconv"
	"time"

	"github.com/agadir/agadir/internal/admin"
	"github.com/agadir/agadir/internal/catalog"
	"github.com/agadir/agadir/internal/hostkey"
	"github.com/agadir/agadir/internal/logging"
	"github.com/agadir/agadir/internal/logging/events"
	"github.com/agadir/agadir/internal/metrics"
	"github.com/agadir/agadir/internal/session"
	"github.com/agadir/agadir/internal/sshserver"
	"golang.org/x/sync/errgroup"
)

// Config describes user-provided application options.
type Config struct {
	Root           string
	Listen         string
	Port           int
	RedrawInterval time.Duration
	IdleTimeout    time.Duration
	Wrap           int
	AcceptRate     float64
	AdminAddr      string
}

// PostsDir is where documents are read from.
func (c Config) PostsDir() string {
	return filepath.Join(c.Root, "posts")
}

// KeyPath is the SSH host key file.
func (c Config) KeyPath() string {
	return filepath.Join(c.Root, "key")
}

// Addr is the SSH listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Listen, strconv.Itoa(c.Port))
}

// Run loads the catalog and host key, then serves SSH sessions (and the
// admin endpoint when configured) until ctx is cancelled or a server fails.
func Run(ctx context.Context, cfg Config) error {
	formatter, err := catalog.NewMarkdownFormatter(cfg.Wrap)
	if err != nil {
		return fmt.Errorf("create formatter: %w", err)
	}
	cat, err := catalog.Load(cfg.PostsDir(), formatter)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	logging.Logger().Info().Str("dir", cfg.PostsDir()).Int("documents", cat.Len()).Msg("catalog loaded")

	signer, err := hostkey.LoadOrGenerate(cfg.KeyPath())
	if err != nil {
		return err
	}

	m := metrics.New()
	registry := session.NewRegistry(cat, session.Options{Metrics: m})
	driver := session.NewDriver(registry, cfg.RedrawInterval)
	server := sshserver.New(registry, sshserver.Options{
		HostKey:     signer,
		IdleTimeout: cfg.IdleTimeout,
		AcceptRate:  cfg.AcceptRate,
		Metrics:     m,
	})

	g, gctx := errgroup.WithContext(ctx)
	driver.Start(gctx)
	g.Go(func() error {
		return server.ListenAndServe(gctx, cfg.Addr())
	})
	if cfg.AdminAddr != "" {
		g.Go(func() error {
			return admin.Serve(gctx, cfg.AdminAddr, admin.NewRouter(cat, registry, m))
		})
	}

	err = g.Wait()
	driver.Stop()
	driver.Wait()
	registry.CloseAll()

	reason := "shutdown"
	if err != nil {
		reason = err.Error()
	}
	events.App.Stop(reason)
	return err
}
