package planner

import "fmt"

// ConfigurationError reports a toolchain or options problem that
// prevented the planner from even starting (spec §7).
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string { return "planner: configuration: " + e.Reason }

// FormatError reports a container-format problem: an unsupported
// source format, an extension that doesn't match the probed format,
// or a format-name inconsistency detected after extension
// normalization (spec §4.4b-c).
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string { return "planner: format: " + e.Reason }

// ValidationError reports a per-stream or per-file bound violation
// from stage (d): stream count, dimension, pixel count, duration, or
// an unrecognized codec (spec §4.4d).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "planner: validation: " + e.Reason }

// ToolchainError reports a failed toolchain invocation (spec §7). The
// planner fills only Argv; ExitCode, Stderr and Stdout stay at their
// zero values, and the underlying supervisor error is not kept.
type ToolchainError struct {
	Argv     []string
	ExitCode int
	Stderr   string
	Stdout   string
}

func (e *ToolchainError) Error() string {
	return fmt.Sprintf("planner: toolchain exited %d: %s", e.ExitCode, e.Stderr)
}

// ProbeError reports that the probe binary's JSON or capability output
// was missing an expected field or was unparseable (spec §7).
type ProbeError struct {
	Reason string
}

func (e *ProbeError) Error() string { return "planner: probe: " + e.Reason }

// ReencodeOptional is a signal, not a failure: raised only when
// throw_when_reencode_optional is set and the planner determined no
// re-encode was required (spec §3, §7).
type ReencodeOptional struct{}

func (e *ReencodeOptional) Error() string { return "planner: no re-encode required" }

// FileProcessingError wraps a lower-level error attributable to a
// single video, carrying the file/variant identifiers for correlation
// (spec §7). Cancellation is never wrapped this way; it propagates
// unchanged.
type FileProcessingError struct {
	FileID    string
	VariantID string
	Err       error
}

func (e *FileProcessingError) Error() string {
	return fmt.Sprintf("planner: file %s variant %s: %v", e.FileID, e.VariantID, e.Err)
}

func (e *FileProcessingError) Unwrap() error { return e.Err }
