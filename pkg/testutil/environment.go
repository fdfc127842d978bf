// Package testutil orchestrates isolated test environments: a real
// filesystem under t.TempDir with separate home and dotfiles roots, and
// pre-wired engine construction.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/dotsync/pkg/filesystem"
	"github.com/arthur-debert/dotsync/pkg/paths"
	"github.com/arthur-debert/dotsync/pkg/platform"
	"github.com/arthur-debert/dotsync/pkg/reconcile"
	"github.com/arthur-debert/dotsync/pkg/snapshot"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// Env is a complete isolated environment for one test.
type Env struct {
	Root  string
	Home  string
	FS    types.FS
	Paths paths.Paths

	t *testing.T
}

// NewEnv creates an isolated environment with its own home directory
// and dotfiles root, and points HOME and DOTSYNC_ROOT at them.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	tmp := t.TempDir()
	env := &Env{
		Root: filepath.Join(tmp, "dotfiles"),
		Home: filepath.Join(tmp, "home"),
		FS:   filesystem.NewOS(),
		t:    t,
	}

	for _, dir := range []string{env.Root, env.Home} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create %s: %v", dir, err)
		}
	}

	t.Setenv("HOME", env.Home)
	t.Setenv(paths.EnvDotsyncRoot, env.Root)

	p, err := paths.New(env.Root)
	if err != nil {
		t.Fatalf("failed to create paths: %v", err)
	}
	env.Paths = p
	return env
}

// Engine builds a reconciliation engine pinned to the linux platform
// tag for deterministic eligibility checks.
func (e *Env) Engine() *reconcile.Engine {
	return &reconcile.Engine{
		FS:        e.FS,
		Paths:     e.Paths,
		Snapshots: snapshot.New(e.FS, e.Paths.BackupsDir()),
		Platform:  platform.Linux,
		Retention: 5,
	}
}

// EngineAt builds an engine whose snapshot service uses a fixed clock.
func (e *Env) EngineAt(now time.Time) *reconcile.Engine {
	eng := e.Engine()
	eng.Snapshots = snapshot.NewWithClock(e.FS, e.Paths.BackupsDir(), func() time.Time { return now })
	return eng
}

// HomePath resolves a path relative to the test home directory.
func (e *Env) HomePath(rel string) string {
	return filepath.Join(e.Home, rel)
}

// RootPath resolves a path relative to the dotfiles root.
func (e *Env) RootPath(rel string) string {
	return filepath.Join(e.Root, rel)
}
