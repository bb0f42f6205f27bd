package app

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultStorageRoot returns where the client keeps its local state (profile
// snapshot, cookie file, logs). Prefer the XDG data dir; fall back to
// ~/.local/share and finally the temp dir.
func DefaultStorageRoot() string {
	if base := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); base != "" {
		return filepath.Join(base, "postprep")
	}
	if base, err := os.UserHomeDir(); err == nil && base != "" {
		return filepath.Join(base, ".local", "share", "postprep")
	}
	return filepath.Join(os.TempDir(), "postprep")
}
