package log

import (
	"context"

	"github.com/rs/zerolog"
)

type ctxKey string

const (
	fileIDKey    ctxKey = "file_id"
	variantIDKey ctxKey = "variant_id"
	stageKey     ctxKey = "stage"
)

// ContextWithFileID stores the file identifier used by the host
// file-processor framework in the context, for correlation in logs.
func ContextWithFileID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, fileIDKey, id)
}

// ContextWithVariantID stores the variant identifier in the context.
func ContextWithVariantID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, variantIDKey, id)
}

// ContextWithStage annotates the context with the current planner stage name.
func ContextWithStage(ctx context.Context, stage string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, stageKey, stage)
}

func fromCtx(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// WithContext enriches logger with correlation fields carried on ctx.
func WithContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	if ctx == nil {
		return logger
	}
	b := logger.With()
	added := false
	if v := fromCtx(ctx, fileIDKey); v != "" {
		b = b.Str("file_id", v)
		added = true
	}
	if v := fromCtx(ctx, variantIDKey); v != "" {
		b = b.Str("variant_id", v)
		added = true
	}
	if v := fromCtx(ctx, stageKey); v != "" {
		b = b.Str("stage", v)
		added = true
	}
	if !added {
		return logger
	}
	return b.Logger()
}
