package app

import (
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"
)

// Watcher polls a file or directory and calls back when it changes. It is
// used to reload a volume whose slice files are rewritten on disk, and during
// development to offer a restart after the binary is recompiled.
type Watcher struct {
	path          string
	checkInterval time.Duration

	mu       sync.Mutex
	baseline time.Time
	stopCh   chan struct{}
	onChange func()
}

// NewWatcher creates a watcher for path. Returns nil if path cannot be stat'ed.
func NewWatcher(path string, checkInterval time.Duration) *Watcher {
	// watch the resolved path so replacing the target through a symlink is seen
	if real, err := filepath.EvalSymlinks(path); err == nil {
		path = real
	}
	mod, err := modTime(path)
	if err != nil {
		return nil
	}
	return &Watcher{
		path:          path,
		checkInterval: checkInterval,
		baseline:      mod,
	}
}

// NewBinaryWatcher watches the running executable.
func NewBinaryWatcher(checkInterval time.Duration) *Watcher {
	execPath, err := os.Executable()
	if err != nil {
		return nil
	}
	return NewWatcher(execPath, checkInterval)
}

// OnChange sets the callback invoked when the path changes. The callback
// runs on the watcher goroutine.
func (w *Watcher) OnChange(callback func()) {
	w.mu.Lock()
	w.onChange = callback
	w.mu.Unlock()
}

// Start begins watching in a background goroutine. The watcher fires once,
// then stops until started again.
func (w *Watcher) Start() {
	w.mu.Lock()
	w.stopCh = make(chan struct{})
	stop := w.stopCh
	w.mu.Unlock()
	go w.watchLoop(stop)
}

// Stop stops the watcher goroutine. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopCh != nil {
		close(w.stopCh)
		w.stopCh = nil
	}
}

func (w *Watcher) watchLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(w.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !w.Changed() {
				continue
			}
			w.mu.Lock()
			cb := w.onChange
			w.mu.Unlock()
			if cb != nil {
				cb()
			}
			return
		}
	}
}

// Changed reports whether the path was modified after the baseline.
func (w *Watcher) Changed() bool {
	mod, err := modTime(w.path)
	if err != nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return mod.After(w.baseline)
}

// Path returns the watched path.
func (w *Watcher) Path() string {
	return w.path
}

// Baseline returns the modification time changes are compared against.
func (w *Watcher) Baseline() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.baseline
}

// ResetBaseline accepts the current state as unchanged.
// Call this after handling a change to avoid repeated notifications.
func (w *Watcher) ResetBaseline() {
	if mod, err := modTime(w.path); err == nil {
		w.mu.Lock()
		w.baseline = mod
		w.mu.Unlock()
	}
}

// modTime returns the newest modification time of path and, for a
// directory, of its direct entries.
func modTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	latest := info.ModTime()
	if !info.IsDir() {
		return latest, nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return latest, nil
	}
	for _, e := range entries {
		if fi, err := e.Info(); err == nil && fi.ModTime().After(latest) {
			latest = fi.ModTime()
		}
	}
	return latest, nil
}

// RestartProcess replaces the current process with a new instance of the
// specified executable, preserving command line arguments and environment.
// This function does not return on success.
func RestartProcess(execPath string) error {
	return syscall.Exec(execPath, os.Args, os.Environ())
}
