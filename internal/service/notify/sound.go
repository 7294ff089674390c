// Package notify plays short audible notifications for the desktop daemon.
package notify

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// DefaultFailureSound is looked up next to the binary, then in the working directory.
var DefaultFailureSound = filepath.Join("sound", "failure.mp3")

// SoundNotifier plays the failure sound.
type SoundNotifier struct {
	logger *zap.SugaredLogger
	path   string
	ply    Player
}

// NewSoundNotifier creates a notifier. An empty path selects DefaultFailureSound
// and a nil player selects a BeepPlayer at 0 dB.
func NewSoundNotifier(logger *zap.SugaredLogger, path string, ply Player) *SoundNotifier {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if strings.TrimSpace(path) == "" {
		path = resolve(DefaultFailureSound)
	}
	if ply == nil {
		ply = NewBeepPlayer(0)
	}
	return &SoundNotifier{logger: logger, path: path, ply: ply}
}

func resolve(rel string) string {
	if exe, err := os.Executable(); err == nil {
		cand := filepath.Join(filepath.Dir(exe), rel)
		if _, statErr := os.Stat(cand); statErr == nil {
			return cand
		}
	}
	return filepath.FromSlash(rel)
}

// Path reports the sound file in use.
func (n *SoundNotifier) Path() string { return n.path }

// PlayFailure plays the failure sound. Errors are logged and returned.
func (n *SoundNotifier) PlayFailure(ctx context.Context) error {
	if err := context.Cause(ctx); err != nil {
		return err
	}

	f, err := os.Open(n.path)
	if err != nil {
		n.logger.Warnw("Failed to open failure sound", "path", n.path, "error", err)
		return err
	}
	defer f.Close()

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(n.path), "."))
	if ext == "" {
		ext = "mp3"
	}
	if err := n.ply.Play(ext, f); err != nil {
		n.logger.Warnw("Failed to play failure sound", "path", n.path, "error", err)
		return err
	}
	return context.Cause(ctx)
}
