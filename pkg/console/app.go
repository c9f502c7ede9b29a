package console

import (
	"io"
	"sync"

	"github.com/dd0wney/cluso-patchbay/pkg/config"
	"github.com/dd0wney/cluso-patchbay/pkg/engine"
	"github.com/dd0wney/cluso-patchbay/pkg/events"
	"github.com/dd0wney/cluso-patchbay/pkg/health"
	"github.com/dd0wney/cluso-patchbay/pkg/logging"
	"github.com/dd0wney/cluso-patchbay/pkg/metrics"
	"github.com/dd0wney/cluso-patchbay/pkg/ports"
	"github.com/dd0wney/cluso-patchbay/pkg/runtime/memory"
)

// App is a fully wired engine on the in-memory runtime, as the binaries
// run it. The engine is not safe for concurrent use; App serialises the
// command loop and the health probes through Execute, Locked and the
// registered checks.
type App struct {
	mu sync.Mutex


	Config  config.Config
	Logger  logging.Logger
	Metrics *metrics.Registry
	Events  *events.Bus
	Schemas *ports.Registry
	Runtime *memory.Runtime
	Engine  *engine.Manager
	Console *Console
	Health  *health.Checker
}

// NewApp builds an App from cfg. Console output goes to out.
func NewApp(cfg config.Config, logger logging.Logger, out io.Writer) (*App, error) {
	logger = logging.OrDefault(logger)

	validator, err := cfg.Validator()
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.NewRegistry(),
		Events:  events.NewBus(cfg.EventBuffer),
		Runtime: memory.New(),
	}

	a.Schemas, err = ports.NewRegistry(
		ports.WithLogger(logger),
		ports.WithMetrics(a.Metrics),
		ports.WithEvents(a.Events),
	)
	if err != nil {
		a.Events.Shutdown()
		return nil, err
	}
	if cfg.SchemasFile != "" {
		if _, err := a.Schemas.LoadFile(cfg.SchemasFile); err != nil {
			a.Events.Shutdown()
			return nil, err
		}
	}

	a.Engine = engine.New(a.Runtime,
		engine.WithSchemas(a.Schemas),
		engine.WithValidator(validator),
		engine.WithLogger(logger),
		engine.WithMetrics(a.Metrics),
		engine.WithEvents(a.Events),
	)
	a.Console = New(a.Engine, a.Schemas, out)
	a.Health = a.healthChecks()

	logger.Info("engine ready",
		logging.String("validation_mode", string(validator.Mode())),
		logging.Count(len(a.Engine.SupportedTypes())),
	)
	return a, nil
}

// Execute runs one console command with exclusive access to the engine.
func (a *App) Execute(line string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Console.Execute(line)
}

// Locked runs fn with exclusive access to the engine.
func (a *App) Locked(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fn()
}

func (a *App) serialised(fn health.CheckFunc) health.CheckFunc {
	return func() health.Check {
		a.mu.Lock()
		defer a.mu.Unlock()
		return fn()
	}
}

func (a *App) healthChecks() *health.Checker {
	hc := health.NewChecker()
	hc.Register("units", a.serialised(health.UnitsCheck(a.Engine.NodeCount, a.Runtime.LiveUnits)),
		health.Overall, health.Readiness)
	hc.Register("graph", a.serialised(health.AuditCheck(a.Engine.Audit)))
	hc.Register("events", health.EventsCheck(a.Events.Dropped))
	hc.Register("schemas", a.serialised(health.SchemaCheck(a.Schemas.Coverage, a.Engine.SupportedTypes)))
	hc.Register("engine", health.Static("accepting commands"), health.Liveness)
	return hc
}

// Close removes every node and stops the event bus.
func (a *App) Close() error {
	defer a.Events.Shutdown()
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Engine.Close()
}
