package state

import (
	"context"
	"log"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestContextWithEnv(t *testing.T) {
	ctx := ContextWithEnv(context.Background())
	env := EnvFromContext(ctx)
	if env == nil {
		t.Fatal("EnvFromContext() returned nil")
	}
	if env.start.IsZero() {
		t.Error("Environment start time not set")
	}
}

func TestEnvFromContext_PanicsWithoutEnv(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic when env not in context")
		}
	}()
	EnvFromContext(context.Background())
}

func TestLocalEnv_Uptime(t *testing.T) {
	env := EnvFromContext(ContextWithEnv(context.Background()))

	time.Sleep(10 * time.Millisecond)
	if uptime := env.Uptime(); uptime < 10*time.Millisecond {
		t.Errorf("Uptime() = %v, expected at least 10ms", uptime)
	}
}

func TestLocalEnv_Logger(t *testing.T) {
	env := EnvFromContext(ContextWithEnv(context.Background()))
	if env.Logger() == nil {
		t.Fatal("Logger() returned nil before setup")
	}

	core, logs := observer.New(zapcore.InfoLevel)
	env.Log = zap.New(core)
	env.RedirectStdLog()
	log.Print("from std log")
	env.RestoreStdLog()

	if logs.Len() != 1 {
		t.Fatalf("captured %d entries, want 1", logs.Len())
	}
	if got := logs.All()[0].Message; got != "from std log" {
		t.Errorf("message = %q", got)
	}
}
