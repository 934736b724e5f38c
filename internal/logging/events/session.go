package events

import "github.com/agadir/agadir/internal/logging"

type SessionTracer struct{}

type CloseReason string

const (
	CloseReasonQuit      CloseReason = "quit"
	CloseReasonEOF       CloseReason = "eof"
	CloseReasonTransport CloseReason = "transport"
	CloseReasonShutdown  CloseReason = "shutdown"
)

var Session = SessionTracer{}

func (SessionTracer) Open(id uint64, conn string) {
	logging.Trace("session.open", map[string]interface{}{"id": id, "conn": conn})
}

func (SessionTracer) Close(id uint64, reason CloseReason) {
	logging.Trace("session.close", map[string]interface{}{"id": id, "reason": string(reason)})
}

func (SessionTracer) Missing(op string, id uint64) {
	logging.Trace("session.missing", map[string]interface{}{"op": op, "id": id})
}

func (SessionTracer) Resize(id uint64, width, height int) {
	logging.Trace("session.resize", map[string]interface{}{"id": id, "width": width, "height": height})
}

func (SessionTracer) Overflow(id uint64, dropped int) {
	logging.Trace("session.overflow", map[string]interface{}{"id": id, "dropped": dropped})
}

func (SessionTracer) RenderError(id uint64, err error) {
	if err == nil {
		return
	}
	logging.Trace("session.render.error", map[string]interface{}{"id": id, "error": err.Error()})
}
