package module

import (
	modkit "marginalia/internal/modkit"
	mmodule "marginalia/internal/modkit/module"
	docdom "marginalia/internal/services/documents/domain"
	"marginalia/internal/services/importer/domain"
	srcdom "marginalia/internal/services/sources/domain"
)

// WithDepsModules lets callers pass dependency modules without extracting
// ports themselves in main
func WithDepsModules(docs mmodule.Module, sources mmodule.Module) modkit.Option {
	return modkit.WithPorts(domain.Ports{
		Documents: mmodule.MustPortsOf[docdom.WriterPort](docs),
		Sources:   mmodule.MustPortsOf[srcdom.RegistryPort](sources),
	})
}
