package pipeline

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"

	"mediapull/internal/failure"
)

// LockPath returns the advisory lock file guarding runs for videoID. The file
// stays in place after a run; unlinking it would let two runs lock different
// inodes under the same name.
func LockPath(outputDir, videoID string) string {
	return filepath.Join(outputDir, "."+videoID+".lock")
}

type runLock struct {
	lock *flock.Flock
}

// acquireLock takes the per-video lock without blocking. A held lock means
// another run is writing the same temp files.
func acquireLock(outputDir, videoID string) (*runLock, error) {
	lock := flock.New(LockPath(outputDir, videoID))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, failure.Wrapf(failure.KindUsage, fmt.Sprintf("Cannot lock output directory: %v", err), err)
	}
	if !ok {
		return nil, failure.New(failure.KindUsage, fmt.Sprintf("A download of %s is already running", videoID))
	}
	return &runLock{lock: lock}, nil
}

func (l *runLock) release() {
	if l == nil || l.lock == nil {
		return
	}
	_ = l.lock.Unlock()
}
