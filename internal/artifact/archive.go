package artifact

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// BuildArchive packs the file set into a single zip archive. The archive is
// diagnostic: callers treat failures here as warnings, not attempt failures.
func BuildArchive(files []File) ([]byte, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("cannot archive an empty file set")
	}

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, f := range files {
		entry, err := w.Create(f.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to create archive entry %s: %w", f.Name, err)
		}
		if _, err := entry.Write(f.Content); err != nil {
			return nil, fmt.Errorf("failed to write archive entry %s: %w", f.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}

// ArchiveName returns the archive file name for a project's deployment set.
func ArchiveName(projectName string) string {
	return projectName + "-deployment.zip"
}
