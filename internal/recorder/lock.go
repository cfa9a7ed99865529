package recorder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another recording process holds the lock.
var ErrLocked = errors.New("another recording is already in progress")

// lockFile lives in the stepcap data directory, next to the active-session
// pointer.
const lockFile = "record.lock"

// AcquireLock takes the single-recording flock. Exactly one recording
// session may be active at a time; a second `stepcap record` fails fast.
// The returned release function must be called when recording stops.
func AcquireLock(dataDir string) (release func() error, err error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	lock := flock.New(filepath.Join(dataDir, lockFile))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring recording lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return lock.Unlock, nil
}

// Live reports whether a recording process currently holds the lock. The
// kernel releases a flock when its holder dies, so this stays accurate even
// after a crash that skipped cleanup.
func Live(dataDir string) bool {
	lock := flock.New(filepath.Join(dataDir, lockFile))
	ok, err := lock.TryLock()
	if err != nil {
		return false
	}
	if ok {
		lock.Unlock()
		return false
	}
	return true
}
