package configfs

import (
	"errors"
	"io/fs"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func writeVal(fsys *FS, path, value string) error {
	return afero.WriteFile(fsys, path, []byte(value), 0o644)
}

func TestActivateTransitions(t *testing.T) {
	fsys, act := newTestFS(t)
	if err := writeVal(fsys, "/select_features", "alpha"); err != nil {
		t.Fatal(err)
	}

	if got := readLines(t, fsys, "/activate"); got != "0\n" {
		t.Fatalf("initial activate = %q", got)
	}

	if err := writeVal(fsys, "/activate", "1"); err != nil {
		t.Fatalf("activation failed: %v", err)
	}
	if got := readLines(t, fsys, "/activate"); got != "1\n" {
		t.Errorf("after activation = %q", got)
	}
	if act.applies != 1 {
		t.Errorf("applies = %d, want 1", act.applies)
	}
	if len(act.lastSelected) != 1 || act.lastSelected[0] != "alpha" {
		t.Errorf("selected = %v", act.lastSelected)
	}

	if err := writeVal(fsys, "/activate", "0"); err != nil {
		t.Fatalf("deactivation failed: %v", err)
	}
	if got := readLines(t, fsys, "/activate"); got != "0\n" {
		t.Errorf("after deactivation = %q", got)
	}
	if act.teardowns != 1 {
		t.Errorf("teardowns = %d, want 1", act.teardowns)
	}
}

func TestActivateAcceptsBoolSpellings(t *testing.T) {
	fsys, act := newTestFS(t)

	for _, v := range []string{"1", "true", "on", "YES", "y\n"} {
		if err := writeVal(fsys, "/activate", v); err != nil {
			t.Errorf("activate(%q) failed: %v", v, err)
		}
	}
	for _, v := range []string{"0", "false", "off", "NO", "n\n"} {
		if err := writeVal(fsys, "/activate", v); err != nil {
			t.Errorf("deactivate(%q) failed: %v", v, err)
		}
	}
	if act.applies != 5 || act.teardowns != 5 {
		t.Errorf("applies/teardowns = %d/%d, want 5/5", act.applies, act.teardowns)
	}

	err := writeVal(fsys, "/activate", "maybe")
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("bad bool = %v, want ErrInvalidInput", err)
	}
}

func TestActivateIdempotentStillDelegates(t *testing.T) {
	fsys, act := newTestFS(t)

	// Re-activating an active configuration succeeds and delegates again.
	if err := writeVal(fsys, "/activate", "1"); err != nil {
		t.Fatal(err)
	}
	if err := writeVal(fsys, "/activate", "1"); err != nil {
		t.Fatalf("idempotent activation failed: %v", err)
	}
	if act.applies != 2 {
		t.Errorf("applies = %d, want 2", act.applies)
	}

	// Same on the inactive side: writing 0 when already inactive.
	if err := writeVal(fsys, "/activate", "0"); err != nil {
		t.Fatal(err)
	}
	if err := writeVal(fsys, "/activate", "0"); err != nil {
		t.Fatalf("idempotent deactivation failed: %v", err)
	}
	if act.teardowns != 2 {
		t.Errorf("teardowns = %d, want 2", act.teardowns)
	}
}

func TestActiveConfigurationIsBusy(t *testing.T) {
	fsys, _ := newTestFS(t)
	if err := writeVal(fsys, "/alpha/tasks", "keep"); err != nil {
		t.Fatal(err)
	}
	if err := writeVal(fsys, "/activate", "1"); err != nil {
		t.Fatal(err)
	}

	// Parameter and selection writes bounce while active.
	err := writeVal(fsys, "/alpha/tasks", "other")
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("param write while active = %v, want ErrBusy", err)
	}
	err = writeVal(fsys, "/select_features", "beta")
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("selection write while active = %v, want ErrBusy", err)
	}

	// Stores stay untouched by the rejected writes.
	if got := readLines(t, fsys, "/alpha/tasks"); got != "keep\n" {
		t.Errorf("store after busy rejection = %q", got)
	}

	// Reads keep working while active.
	if got := readLines(t, fsys, "/available_features"); got == "" {
		t.Errorf("read while active should succeed")
	}

	// Deactivation reopens mutation.
	if err := writeVal(fsys, "/activate", "0"); err != nil {
		t.Fatal(err)
	}
	if err := writeVal(fsys, "/alpha/tasks", "other"); err != nil {
		t.Errorf("write after deactivation = %v", err)
	}
}

func TestApplyFailureKeepsInactive(t *testing.T) {
	fsys, act := newTestFS(t)
	act.applyErr = errors.New("hook refused")

	err := writeVal(fsys, "/activate", "1")
	if err == nil {
		t.Fatal("activation should have failed")
	}
	if got := readLines(t, fsys, "/activate"); got != "0\n" {
		t.Errorf("flag after failed apply = %q, want 0", got)
	}

	// The configuration is still editable.
	act.applyErr = nil
	if err := writeVal(fsys, "/alpha/tasks", "x"); err != nil {
		t.Errorf("write after failed apply = %v", err)
	}
}

func TestTeardownErrorStillDeactivates(t *testing.T) {
	fsys, act := newTestFS(t)
	if err := writeVal(fsys, "/activate", "1"); err != nil {
		t.Fatal(err)
	}

	act.teardownErr = errors.New("device wedged")
	err := writeVal(fsys, "/activate", "0")
	if err == nil {
		t.Fatal("teardown error should surface")
	}

	// The flag flips anyway so the configuration never wedges in Active.
	if got := readLines(t, fsys, "/activate"); got != "0\n" {
		t.Errorf("flag after failed teardown = %q, want 0", got)
	}
	if err := writeVal(fsys, "/alpha/tasks", "x"); err != nil {
		t.Errorf("write after failed teardown = %v", err)
	}
}

func TestDestroyActiveConfigurationTearsDown(t *testing.T) {
	fsys, act := newTestFS(t)
	mkConfig(t, fsys, "c")
	if err := writeVal(fsys, "/configs/c/activate", "1"); err != nil {
		t.Fatal(err)
	}

	if err := fsys.Remove("/configs/c"); err != nil {
		t.Fatalf("Remove of active config failed: %v", err)
	}
	if act.teardowns != 1 {
		t.Errorf("teardowns = %d, want 1", act.teardowns)
	}
}

func TestStaleWriterAfterDestroy(t *testing.T) {
	fsys, _ := newTestFS(t)
	mkConfig(t, fsys, "c")

	f, err := fsys.OpenFile("/configs/c/alpha/tasks", os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if err := fsys.Remove("/configs/c"); err != nil {
		t.Fatal(err)
	}

	_, err = f.Write([]byte("late"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("write on destroyed config = %v, want ErrNotFound", err)
	}
}

func TestReaderExcludesWriter(t *testing.T) {
	fsys, _ := newTestFS(t)
	if err := writeVal(fsys, "/alpha/tasks", "a,b"); err != nil {
		t.Fatal(err)
	}

	r, err := fsys.Open("/alpha/tasks")
	if err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	writeDone := false

	started := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		close(started)
		if err := writeVal(fsys, "/alpha/tasks", "c"); err != nil {
			t.Errorf("concurrent write failed: %v", err)
		}
		mu.Lock()
		writeDone = true
		mu.Unlock()
		close(finished)
	}()

	<-started
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	if writeDone {
		mu.Unlock()
		t.Fatal("write completed while a read sequence held the lock")
	}
	mu.Unlock()

	// Closing the reader, even mid-iteration, releases the lock.
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("write never unblocked after reader close")
	}

	if got := readLines(t, fsys, "/alpha/tasks"); got != "c\n" {
		t.Errorf("store after unblocked write = %q", got)
	}
}

func TestActivationErrorsAreSentinelThroughPathError(t *testing.T) {
	fsys, _ := newTestFS(t)
	if err := writeVal(fsys, "/activate", "1"); err != nil {
		t.Fatal(err)
	}

	err := writeVal(fsys, "/alpha/tasks", "x")
	var perr *fs.PathError
	if !errors.As(err, &perr) {
		t.Fatalf("busy error not a PathError: %v", err)
	}
	if !errors.Is(perr, ErrBusy) {
		t.Errorf("PathError does not wrap ErrBusy: %v", perr)
	}
}
