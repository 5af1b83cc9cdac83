package modkit

import (
	"marginalia/internal/modkit/repokit"
	"marginalia/internal/platform/config"
	"marginalia/internal/platform/logger"
	"marginalia/internal/platform/store"
)

// Deps is the shared dependency set every module constructor receives.
// Backends a binary did not open stay nil; modules check what they use
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
}
