package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Sink receives a copy of each deployment attempt's artifacts for audit and
// debugging. Implementations are best-effort: the deployment pipeline logs
// sink failures and carries on, so a sink must never be load-bearing.
type Sink interface {
	// Store persists the file set and archive, returning a human-readable
	// location (a directory path for disk sinks).
	Store(projectName string, files []File, archive []byte) (string, error)
}

// DirSink writes each attempt to its own timestamped subdirectory under a
// base directory. Concurrent attempts land in distinct directories as long
// as their timestamps differ at second resolution; this is best-effort
// uniqueness, not a lock.
type DirSink struct {
	base string
}

// NewDirSink creates a sink rooted at base. The base directory is created
// lazily on first store.
func NewDirSink(base string) *DirSink {
	return &DirSink{base: base}
}

// Store writes the files and archive to {base}/{projectName}-{timestamp}/.
// The timestamp is RFC 3339 with colons and periods replaced so the name is
// valid on every filesystem.
func (s *DirSink) Store(projectName string, files []File, archive []byte) (string, error) {
	if projectName == "" {
		return "", fmt.Errorf("project name cannot be empty")
	}

	stamp := time.Now().UTC().Format(time.RFC3339)
	stamp = strings.NewReplacer(":", "-", ".", "-").Replace(stamp)
	dir := filepath.Join(s.base, fmt.Sprintf("%s-%s", projectName, stamp))

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	for _, f := range files {
		path := filepath.Join(dir, f.Name)
		if err := os.WriteFile(path, f.Content, 0644); err != nil {
			return "", fmt.Errorf("failed to write backup file %s: %w", f.Name, err)
		}
	}

	if len(archive) > 0 {
		path := filepath.Join(dir, ArchiveName(projectName))
		if err := os.WriteFile(path, archive, 0644); err != nil {
			return "", fmt.Errorf("failed to write backup archive: %w", err)
		}
	}

	return dir, nil
}

// NopSink discards artifacts. Used when no local disk is available or the
// backup feature is disabled.
type NopSink struct{}

// Store discards the artifacts and reports an empty location.
func (NopSink) Store(string, []File, []byte) (string, error) {
	return "", nil
}
