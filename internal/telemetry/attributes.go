package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common span attribute keys used across the planner, supervisor and
// thumbnail pipeline.
const (
	FileIDKey    = "reencode.file_id"
	VariantIDKey = "reencode.variant_id"
	StageKey     = "reencode.stage"

	CodecInKey    = "reencode.codec.in"
	CodecOutKey   = "reencode.codec.out"
	ContainerKey  = "reencode.container"
	RemuxOnlyKey  = "reencode.remux_only"
	LaneKey       = "reencode.lane"
	ExitCodeKey   = "reencode.exit_code"
	RetryCountKey = "reencode.retry_count"

	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// WorkAttributes creates the baseline attributes every planner span carries.
func WorkAttributes(fileID, variantID, stage string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(FileIDKey, fileID),
		attribute.String(VariantIDKey, variantID),
		attribute.String(StageKey, stage),
	}
}

// CodecAttributes records the in/out codec and container decided for a stage.
func CodecAttributes(codecIn, codecOut, container string, remuxOnly bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(CodecInKey, codecIn),
		attribute.String(CodecOutKey, codecOut),
		attribute.String(ContainerKey, container),
		attribute.Bool(RemuxOnlyKey, remuxOnly),
	}
}

// ProcessAttributes records a supervisor invocation's lane and outcome.
func ProcessAttributes(lane string, exitCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(LaneKey, lane),
		attribute.Int(ExitCodeKey, exitCode),
	}
}

// RetryAttributes records a retry-ladder step for the thumbnail pipeline.
func RetryAttributes(count int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(RetryCountKey, count),
	}
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(_ error, errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
