package module

import (
	modkit "marginalia/internal/modkit"
	mmodule "marginalia/internal/modkit/module"
	anndom "marginalia/internal/services/annotations/domain"
	docdom "marginalia/internal/services/documents/domain"
	"marginalia/internal/services/review/domain"
)

// WithDepsModules lets callers pass dependency modules without extracting
// ports themselves in main
func WithDepsModules(docs mmodule.Module, anns mmodule.Module) modkit.Option {
	return modkit.WithPorts(domain.Ports{
		Documents:   mmodule.MustPortsOf[docdom.ReaderPort](docs),
		Annotations: mmodule.MustPortsOf[anndom.QueryPort](anns),
		Marker:      mmodule.MustPortsOf[anndom.WriterPort](anns),
	})
}
