package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status       Status
	EngineLoaded bool
	Checks       map[string]CheckResult
}

type namedChecker struct {
	name    string
	checker Checker
}

// Service coordinates health checks.
type Service struct {
	db       DBPinger
	engine   EngineState
	checkers []namedChecker
}

// New creates a Service. engine can be nil, which reports the engine as not loaded.
func New(db DBPinger, engine EngineState) *Service {
	return &Service{db: db, engine: engine}
}

// WithChecker adds a provider check reported under name. A nil checker is ignored.
func (s *Service) WithChecker(name string, c Checker) *Service {
	if c != nil {
		s.checkers = append(s.checkers, namedChecker{name: name, checker: c})
	}
	return s
}

// Check runs health checks against all components. The engine must be loaded for
// the service to count as healthy.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, len(s.checkers)+1)

	checks["database"] = result(s.db.Ping(ctx))
	for _, c := range s.checkers {
		checks[c.name] = result(c.checker.HealthCheck(ctx))
	}

	loaded := s.engine != nil && s.engine.Ready()

	status := Healthy
	if !loaded {
		status = Degraded
	}
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, EngineLoaded: loaded, Checks: checks}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
