// Package workctx defines the external Context the core consumes to
// obtain the source file, hand out scratch work files, and observe
// cancellation. The host file-processor framework is out of scope
// (spec §1); this package only declares the interface and a reference
// local implementation used by tests and cmd/reencodectl.
package workctx

import "context"

// Context is the interface the planner and thumbnail pipeline consume
// to interact with the host file-processor framework (spec §6).
type Context interface {
	// GetSourceAsFile returns the filesystem path of the source media
	// file for this invocation.
	GetSourceAsFile(ctx context.Context) (string, error)

	// GetNewWorkFile allocates a new scratch file with the given
	// extension (no leading dot), owned by the Context and released
	// when the invocation ends.
	GetNewWorkFile(ctx context.Context, extension string) (string, error)

	// Extension returns the source file's extension, without a
	// leading dot.
	Extension() string

	// FileID and VariantID identify this invocation for logging and
	// correlation; they carry no semantic meaning to the core.
	FileID() string
	VariantID() string

	// CancellationToken returns a context that is cancelled when the
	// host requests the operation stop.
	CancellationToken() context.Context
}
