package thumbnail

import "fmt"

// ValidationError reports a stream-selection or timestamp-selection
// problem: no video streams, or neither absolute_seconds nor fraction
// given for a source that needs a seek (spec §4.5).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "thumbnail: validation: " + e.Reason }

// ToolchainError wraps a non-zero toolchain exit from one retry-ladder
// attempt, carrying the argv and stderr for diagnostics (spec §7).
type ToolchainError struct {
	Argv     []string
	ExitCode int
	Stderr   string
}

func (e *ToolchainError) Error() string {
	return fmt.Sprintf("thumbnail: toolchain exited %d: %s", e.ExitCode, e.Stderr)
}
