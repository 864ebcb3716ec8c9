package observability

import (
	"context"
	"testing"

	"github.com/systic2/allleaguesfans-sub001/internal/config"
	"github.com/systic2/allleaguesfans-sub001/internal/platform/logging"
)

func TestInit_Disabled(t *testing.T) {
	cfg := config.Config{
		AppEnv:         config.EnvDev,
		ServiceName:    "allleaguesfans-reconcile",
		ServiceVersion: "dev",
	}

	shutdown, err := Init(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("init observability: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestInit_UptraceWithoutDSNStaysOff(t *testing.T) {
	cfg := config.Config{UptraceEnabled: true, UptraceLogsEnabled: true}

	shutdown, err := Init(cfg, nil)
	if err != nil {
		t.Fatalf("init observability: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
