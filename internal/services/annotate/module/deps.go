package module

import (
	modkit "marginalia/internal/modkit"
	mmodule "marginalia/internal/modkit/module"
	"marginalia/internal/services/annotate/domain"
	anndom "marginalia/internal/services/annotations/domain"
	docdom "marginalia/internal/services/documents/domain"
)

// WithDepsModules lets callers pass dependency modules without extracting
// ports themselves in main
func WithDepsModules(docs mmodule.Module, anns mmodule.Module) modkit.Option {
	return modkit.WithPorts(domain.Ports{
		Documents:   mmodule.MustPortsOf[docdom.ReaderPort](docs),
		Stamper:     mmodule.MustPortsOf[docdom.WriterPort](docs),
		Annotations: mmodule.MustPortsOf[anndom.WriterPort](anns),
	})
}
