package events

import "github.com/agadir/agadir/internal/logging"

type UITracer struct{}

var UI = UITracer{}

func (UITracer) Key(id uint64, key, focus string) {
	logging.Trace("ui.key", map[string]interface{}{"id": id, "key": key, "focus": focus})
}

func (UITracer) Focus(id uint64, from, to string) {
	logging.Trace("ui.focus", map[string]interface{}{"id": id, "from": from, "to": to})
}

func (UITracer) Selection(id uint64, selection int) {
	logging.Trace("ui.selection", map[string]interface{}{"id": id, "selection": selection})
}

func (UITracer) Scroll(id uint64, scroll int) {
	logging.Trace("ui.scroll", map[string]interface{}{"id": id, "scroll": scroll})
}
