// Package admin serves the operator HTTP endpoints: health, Prometheus
// metrics, live sessions and a title search over the catalog.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/agadir/agadir/internal/catalog"
	"github.com/agadir/agadir/internal/logging"
	"github.com/agadir/agadir/internal/metrics"
	"github.com/agadir/agadir/internal/session"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

// SessionLister reports the live sessions.
type SessionLister interface {
	Sessions() []session.Info
}

// Document is the JSON form of one catalog entry.
type Document struct {
	Title    string    `json:"title"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
	Lines    int       `json:"lines"`
}

type handler struct {
	cat      *catalog.Catalog
	sessions SessionLister
}

// NewRouter builds the admin routes.
func NewRouter(cat *catalog.Catalog, sessions SessionLister, m *metrics.Metrics) http.Handler {
	h := &handler{cat: cat, sessions: sessions}
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(accessLog)

	r.Get("/healthz", h.health)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry}))
	r.Get("/sessions", h.listSessions)
	r.Get("/documents", h.listDocuments)
	return r
}

// Serve runs the admin server on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, h http.Handler) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	srv := &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second}
	logging.Logger().Info().Str("addr", ln.Addr().String()).Msg("admin server listening")

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		return fmt.Errorf("admin server: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("admin shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("admin server: %w", err)
	}
	return nil
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"documents": h.cat.Len(),
	})
}

func (h *handler) listSessions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.sessions.Sessions())
}

// listDocuments returns the table of contents, or the titles matching q
// ranked best first.
func (h *handler) listDocuments(w http.ResponseWriter, r *http.Request) {
	toc := h.cat.Toc()
	order := make([]int, len(toc))
	for i := range order {
		order[i] = i
	}

	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		titles := make([]string, len(toc))
		for i, e := range toc {
			titles[i] = e.Title
		}
		ranks := fuzzy.RankFindNormalizedFold(q, titles)
		sort.Stable(ranks)
		order = order[:0]
		for _, rank := range ranks {
			order = append(order, rank.OriginalIndex)
		}
	}

	out := make([]Document, 0, len(order))
	for _, i := range order {
		doc, ok := h.cat.Selected(i)
		if !ok {
			continue
		}
		out = append(out, Document{
			Title:    doc.Title,
			Created:  doc.Created,
			Modified: doc.Modified,
			Lines:    doc.Height(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logging.Logger().Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("admin request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
