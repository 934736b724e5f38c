// Package testutil drives a running server the way a real SSH client would.
package testutil

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/crypto/ssh"
)

// NewSigner returns a throwaway ed25519 signer.
func NewSigner(t *testing.T) ssh.Signer {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		t.Fatalf("create signer: %v", err)
	}
	return signer
}

// Client is an interactive shell session with a PTY. Everything the server
// writes is accumulated and can be searched with WaitFor.
type Client struct {
	t       *testing.T
	conn    *ssh.Client
	session *ssh.Session
	stdin   io.WriteCloser

	mu     sync.Mutex
	output bytes.Buffer
	done   chan struct{}
}

// Dial connects to addr, requests a width x height PTY and starts a shell.
// The connection is closed when the test ends.
func Dial(t *testing.T, addr string, width, height int) *Client {
	t.Helper()
	conn, err := DialConn(addr)
	if err != nil {
		t.Fatalf("dial %s: %v", addr, err)
	}
	sess, err := conn.NewSession()
	if err != nil {
		conn.Close()
		t.Fatalf("new session: %v", err)
	}
	stdin, err := sess.StdinPipe()
	if err != nil {
		conn.Close()
		t.Fatalf("stdin pipe: %v", err)
	}
	stdout, err := sess.StdoutPipe()
	if err != nil {
		conn.Close()
		t.Fatalf("stdout pipe: %v", err)
	}
	if err := sess.RequestPty("xterm-256color", height, width, ssh.TerminalModes{ssh.ECHO: 0}); err != nil {
		conn.Close()
		t.Fatalf("request pty: %v", err)
	}
	if err := sess.Shell(); err != nil {
		conn.Close()
		t.Fatalf("start shell: %v", err)
	}

	c := &Client{t: t, conn: conn, session: sess, stdin: stdin, done: make(chan struct{})}
	go c.read(stdout)
	t.Cleanup(c.Close)
	return c
}

// DialConn opens an authenticated connection without a session.
func DialConn(addr string) (*ssh.Client, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		return nil, err
	}
	return ssh.Dial("tcp", addr, &ssh.ClientConfig{
		User:            "reader",
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         5 * time.Second,
	})
}

func (c *Client) read(r io.Reader) {
	defer close(c.done)
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			c.mu.Lock()
			c.output.Write(buf[:n])
			c.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

// Send types keys into the session.
func (c *Client) Send(keys string) {
	c.t.Helper()
	if _, err := io.WriteString(c.stdin, keys); err != nil {
		c.t.Fatalf("send %q: %v", keys, err)
	}
}

// Resize reports a new terminal size to the server.
func (c *Client) Resize(width, height int) {
	c.t.Helper()
	if err := c.session.WindowChange(height, width); err != nil {
		c.t.Fatalf("window change: %v", err)
	}
}

// Output returns every byte received so far.
func (c *Client) Output() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.output.String()
}

// Text returns the received output with escape sequences removed.
func (c *Client) Text() string {
	return ansi.Strip(c.Output())
}

// Mark returns a position in the output; WaitForAfter only looks past it.
func (c *Client) Mark() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.output.Len()
}

// WaitFor blocks until the stripped output contains want.
func (c *Client) WaitFor(want string, timeout time.Duration) bool {
	return c.WaitForAfter(0, want, timeout)
}

// WaitForAfter blocks until the stripped output received after mark
// contains want.
func (c *Client) WaitForAfter(mark int, want string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		out := c.Output()
		if mark > len(out) {
			mark = len(out)
		}
		if strings.Contains(ansi.Strip(out[mark:]), want) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// WaitClosed blocks until the server closes the session.
func (c *Client) WaitClosed(timeout time.Duration) bool {
	select {
	case <-c.done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Close ends the session and the connection.
func (c *Client) Close() {
	_ = c.session.Close()
	_ = c.conn.Close()
}
