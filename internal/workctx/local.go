package workctx

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/renameio/v2"
	"github.com/google/uuid"
)

// LocalContext is a reference Context implementation backed by the
// local filesystem, used by tests and the reencodectl CLI in place of
// the real host file-processor framework. Work files are created
// under workDir and removed when Release is called.
type LocalContext struct {
	sourcePath string
	workDir    string
	fileID     string
	variantID  string

	cancel func()
	ctx    context.Context

	mu        sync.Mutex
	workFiles []string
}

// NewLocalContext constructs a LocalContext for sourcePath, allocating
// scratch files under workDir (created if necessary).
func NewLocalContext(ctx context.Context, sourcePath, workDir string) (*LocalContext, error) {
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("workctx: create work dir: %w", err)
	}
	cancelCtx, cancel := context.WithCancel(ctx)
	return &LocalContext{
		sourcePath: sourcePath,
		workDir:    workDir,
		fileID:     uuid.NewString(),
		variantID:  uuid.NewString(),
		ctx:        cancelCtx,
		cancel:     cancel,
	}, nil
}

func (c *LocalContext) GetSourceAsFile(context.Context) (string, error) {
	return c.sourcePath, nil
}

// GetNewWorkFile allocates a new scratch path under the context's work
// directory. The file itself isn't created here; callers write to it
// (directly, or via FinalizeAtomic for durable output files).
func (c *LocalContext) GetNewWorkFile(_ context.Context, extension string) (string, error) {
	extension = strings.TrimPrefix(extension, ".")
	name := uuid.NewString()
	if extension != "" {
		name += "." + extension
	}
	path := filepath.Join(c.workDir, name)

	c.mu.Lock()
	c.workFiles = append(c.workFiles, path)
	c.mu.Unlock()

	return path, nil
}

func (c *LocalContext) Extension() string {
	ext := filepath.Ext(c.sourcePath)
	return strings.TrimPrefix(ext, ".")
}

func (c *LocalContext) FileID() string    { return c.fileID }
func (c *LocalContext) VariantID() string { return c.variantID }

func (c *LocalContext) CancellationToken() context.Context { return c.ctx }

// Cancel triggers the context's cancellation token, simulating a host
// abort request.
func (c *LocalContext) Cancel() { c.cancel() }

// FinalizeAtomic durably writes data to path using an fsync-before-
// rename sequence, so a crash mid-write never leaves a torn result
// file in place of (or alongside) the real output.
func FinalizeAtomic(path string, write func(f *renameio.PendingFile) error) (err error) {
	pending, err := renameio.NewPendingFile(path)
	if err != nil {
		return fmt.Errorf("workctx: create pending file: %w", err)
	}
	defer func() {
		if cerr := pending.Cleanup(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if werr := write(pending); werr != nil {
		return fmt.Errorf("workctx: write pending file: %w", werr)
	}

	if cerr := pending.CloseAtomicallyReplace(); cerr != nil {
		return fmt.Errorf("workctx: atomically replace: %w", cerr)
	}
	return nil
}

// Release removes all work files allocated through GetNewWorkFile. The
// real host Context owns this lifecycle; the local reference
// implementation mirrors it for test/CLI cleanup.
func (c *LocalContext) Release() {
	c.mu.Lock()
	files := append([]string(nil), c.workFiles...)
	c.mu.Unlock()

	for _, f := range files {
		_ = os.Remove(f)
	}
	c.cancel()
}
