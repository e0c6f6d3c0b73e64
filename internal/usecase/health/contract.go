package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// Checker checks availability of an external provider.
type Checker interface {
	HealthCheck(ctx context.Context) error
}

// EngineState reports whether the recommendation engine has its catalog loaded.
type EngineState interface {
	Ready() bool
}
