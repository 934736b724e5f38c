package sshserver

import (
	"encoding/binary"
	"net"
	"time"

	"golang.org/x/crypto/ssh"
)

// idleConn pushes the read deadline forward on every read and the write
// deadline forward on every write, so a connection silent for longer than
// timeout in either direction fails its next operation.
type idleConn struct {
	net.Conn
	timeout time.Duration
}

func newIdleConn(conn net.Conn, timeout time.Duration) net.Conn {
	if timeout <= 0 {
		return conn
	}
	return &idleConn{Conn: conn, timeout: timeout}
}

func (c *idleConn) Read(p []byte) (int, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Read(p)
}

func (c *idleConn) Write(p []byte) (int, error) {
	if err := c.Conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Write(p)
}

// ptyRequest is the payload of a "pty-req" channel request (RFC 4254 6.2).
type ptyRequest struct {
	Term     string
	Columns  uint32
	Rows     uint32
	WidthPx  uint32
	HeightPx uint32
	Modes    string
}

func parsePtyRequest(payload []byte) (cols, rows int, ok bool) {
	var req ptyRequest
	if err := ssh.Unmarshal(payload, &req); err != nil {
		return 0, 0, false
	}
	return int(req.Columns), int(req.Rows), true
}

// parseWindowChange reads the columns and rows of a "window-change" request.
func parseWindowChange(payload []byte) (cols, rows int, ok bool) {
	if len(payload) < 8 {
		return 0, 0, false
	}
	cols = int(binary.BigEndian.Uint32(payload[0:4]))
	rows = int(binary.BigEndian.Uint32(payload[4:8]))
	return cols, rows, true
}
