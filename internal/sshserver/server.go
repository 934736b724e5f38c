// Package sshserver accepts SSH connections and bridges every session
// channel to the session registry.
package sshserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/agadir/agadir/internal/logging"
	"github.com/agadir/agadir/internal/logging/events"
	"github.com/agadir/agadir/internal/metrics"
	"github.com/agadir/agadir/internal/session"
	"github.com/agadir/agadir/internal/ui"
	"github.com/google/uuid"
	"golang.org/x/crypto/ssh"
	"golang.org/x/time/rate"
)

const readBufferSize = 1024

// Sessions is the part of the registry the transport drives.
type Sessions interface {
	Open(connID string, out io.WriteCloser) session.ID
	Dispatch(id session.ID, raw []byte) ui.Effect
	Resize(id session.ID, width, height int)
	Close(id session.ID)
}

// Options configures a Server.
type Options struct {
	HostKey ssh.Signer
	// IdleTimeout closes a connection after this long without traffic in
	// one direction. Zero disables it.
	IdleTimeout time.Duration
	// AcceptRate limits new connections per second, with a burst of twice
	// the rate. Zero disables the limit.
	AcceptRate float64
	Metrics    *metrics.Metrics
}

// Server is an SSH listener that accepts any client.
type Server struct {
	sessions Sessions
	config   *ssh.ServerConfig
	opts     Options
	limiter  *rate.Limiter

	mu    sync.Mutex
	addr  net.Addr
	conns map[string]net.Conn
	wg    sync.WaitGroup
}

func New(sessions Sessions, opts Options) *Server {
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	cfg := &ssh.ServerConfig{
		NoClientAuth: true,
		PasswordCallback: func(ssh.ConnMetadata, []byte) (*ssh.Permissions, error) {
			return &ssh.Permissions{}, nil
		},
		PublicKeyCallback: func(ssh.ConnMetadata, ssh.PublicKey) (*ssh.Permissions, error) {
			return &ssh.Permissions{}, nil
		},
		KeyboardInteractiveCallback: func(ssh.ConnMetadata, ssh.KeyboardInteractiveChallenge) (*ssh.Permissions, error) {
			return &ssh.Permissions{}, nil
		},
	}
	if opts.HostKey != nil {
		cfg.AddHostKey(opts.HostKey)
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.AcceptRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.AcceptRate), max(1, int(2*opts.AcceptRate)))
	}
	return &Server{
		sessions: sessions,
		config:   cfg,
		opts:     opts,
		limiter:  limiter,
		conns:    make(map[string]net.Conn),
	}
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled. On return the
// listener and every open connection are closed and their goroutines have
// exited.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.addr = ln.Addr()
	s.mu.Unlock()
	events.Server.Listen(ln.Addr().String())
	logging.Logger().Info().Str("addr", ln.Addr().String()).Msg("ssh server listening")

	stop := context.AfterFunc(ctx, func() {
		_ = ln.Close()
	})
	defer stop()

	var err error
	for {
		conn, acceptErr := ln.Accept()
		if acceptErr != nil {
			if ctx.Err() == nil && !errors.Is(acceptErr, net.ErrClosed) {
				err = fmt.Errorf("accept: %w", acceptErr)
			}
			break
		}
		if !s.limiter.Allow() {
			s.opts.Metrics.Connections.WithLabelValues(metrics.ConnThrottled).Inc()
			events.Server.Throttled(conn.RemoteAddr().String())
			_ = conn.Close()
			continue
		}
		connID := uuid.NewString()
		idle := newIdleConn(conn, s.opts.IdleTimeout)
		s.track(connID, idle)
		s.wg.Add(1)
		go s.handleConn(connID, idle)
	}
	_ = ln.Close()
	s.closeConns()
	s.wg.Wait()
	return err
}

// Addr reports the listening address once Serve has started.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

func (s *Server) track(id string, conn net.Conn) {
	s.mu.Lock()
	s.conns[id] = conn
	s.mu.Unlock()
}

func (s *Server) untrack(id string) {
	s.mu.Lock()
	delete(s.conns, id)
	s.mu.Unlock()
}

func (s *Server) closeConns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, conn := range s.conns {
		_ = conn.Close()
	}
}

func (s *Server) handleConn(connID string, conn net.Conn) {
	defer s.wg.Done()
	defer s.untrack(connID)
	defer conn.Close()

	remote := conn.RemoteAddr().String()
	srvConn, chans, reqs, err := ssh.NewServerConn(conn, s.config)
	if err != nil {
		s.opts.Metrics.Connections.WithLabelValues(metrics.ConnHandshakeFailed).Inc()
		events.Server.Handshake(remote, err)
		logging.Logger().Debug().Err(err).Str("remote", remote).Msg("ssh handshake failed")
		return
	}
	defer srvConn.Close()
	s.opts.Metrics.Connections.WithLabelValues(metrics.ConnAccepted).Inc()
	events.Server.Connect(connID, remote, srvConn.User())
	defer events.Server.Disconnect(connID)
	go ssh.DiscardRequests(reqs)

	var channels sync.WaitGroup
	for newChan := range chans {
		if newChan.ChannelType() != "session" {
			_ = newChan.Reject(ssh.UnknownChannelType, "unsupported channel type")
			continue
		}
		ch, requests, err := newChan.Accept()
		if err != nil {
			logging.Logger().Warn().Err(err).Str("conn", connID).Msg("accept channel failed")
			continue
		}
		channels.Add(1)
		go func() {
			defer channels.Done()
			s.handleChannel(connID, ch, requests)
		}()
	}
	// chans closes once the connection is gone; every channel read then fails.
	channels.Wait()
}

func (s *Server) handleChannel(connID string, ch ssh.Channel, reqs <-chan *ssh.Request) {
	id := s.sessions.Open(connID, ch)
	defer s.sessions.Close(id)

	go s.handleRequests(connID, id, reqs)

	buf := make([]byte, readBufferSize)
	for {
		n, err := ch.Read(buf)
		if n > 0 {
			if s.sessions.Dispatch(id, buf[:n]) == ui.EffectTerminate {
				return
			}
		}
		if err != nil {
			return
		}
	}
}

func (s *Server) handleRequests(connID string, id session.ID, reqs <-chan *ssh.Request) {
	for req := range reqs {
		ok := false
		switch req.Type {
		case "pty-req":
			if cols, rows, parsed := parsePtyRequest(req.Payload); parsed {
				s.sessions.Resize(id, cols, rows)
				ok = true
			}
		case "window-change":
			if cols, rows, parsed := parseWindowChange(req.Payload); parsed {
				s.sessions.Resize(id, cols, rows)
				ok = true
			}
		case "shell", "env":
			ok = true
		}
		events.Server.Request(connID, req.Type, ok)
		if req.WantReply {
			_ = req.Reply(ok, nil)
		}
	}
}
