package events

import "github.com/agadir/agadir/internal/logging"

type ServerTracer struct{}

var Server = ServerTracer{}

func (ServerTracer) Listen(addr string) {
	logging.Trace("server.listen", map[string]interface{}{"addr": addr})
}

func (ServerTracer) Connect(conn, remote, user string) {
	logging.Trace("server.connect", map[string]interface{}{"conn": conn, "remote": remote, "user": user})
}

func (ServerTracer) Throttled(remote string) {
	logging.Trace("server.throttled", map[string]interface{}{"remote": remote})
}

func (ServerTracer) Handshake(remote string, err error) {
	payload := map[string]interface{}{"remote": remote}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("server.handshake", payload)
}

func (ServerTracer) Request(conn, kind string, ok bool) {
	logging.Trace("server.request", map[string]interface{}{"conn": conn, "type": kind, "ok": ok})
}

func (ServerTracer) Disconnect(conn string) {
	logging.Trace("server.disconnect", map[string]interface{}{"conn": conn})
}
