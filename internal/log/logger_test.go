package log

import "testing"

func TestConfigureInvalidLevelFallsBackToInfo(t *testing.T) {
	Configure(Config{Level: "not-a-level"})
	if L().GetLevel().String() != "info" {
		t.Fatalf("expected info level fallback, got %s", L().GetLevel().String())
	}
}

func TestWithComponentAddsField(t *testing.T) {
	Configure(Config{Level: "debug"})
	logger := WithComponent("planner")
	if logger.GetLevel().String() != "debug" {
		t.Fatalf("component logger should inherit level")
	}
}
