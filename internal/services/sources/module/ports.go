package module

import "marginalia/internal/services/sources/domain"

// Ports defines sources module ports exposed via the registry
type Ports struct {
	Registry  domain.RegistryPort
	Seeder    domain.SeederPort
	Refresher domain.RefresherPort
	Worker    domain.WorkerPort
}
