package events

import "github.com/agadir/agadir/internal/logging"

type CatalogTracer struct{}

var Catalog = CatalogTracer{}

func (CatalogTracer) Loaded(dir string, documents int) {
	logging.Trace("catalog.load", map[string]interface{}{"dir": dir, "documents": documents})
}

func (CatalogTracer) Skip(file, reason string) {
	logging.Trace("catalog.skip", map[string]interface{}{"file": file, "reason": reason})
}
