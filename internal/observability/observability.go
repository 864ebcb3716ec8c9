package observability

import (
	"context"
	"errors"

	"github.com/systic2/allleaguesfans-sub001/internal/config"
	"github.com/systic2/allleaguesfans-sub001/internal/platform/logging"
)

// Shutdown flushes exporters and stops the profiler.
type Shutdown func(context.Context) error

// Init starts tracing, log export and profiling as configured. The returned
// Shutdown is always non-nil when err is nil.
func Init(cfg config.Config, logger *logging.Logger) (Shutdown, error) {
	if logger == nil {
		logger = logging.Default()
	}

	stopTracing := initUptrace(cfg, logger)
	stopProfiler, err := initPyroscope(cfg, logger)
	if err != nil {
		_ = stopTracing(context.Background())
		return nil, err
	}

	return func(ctx context.Context) error {
		return errors.Join(stopProfiler(), stopTracing(ctx))
	}, nil
}
