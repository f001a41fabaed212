package template

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// ArchiveName is the file name offered for download.
const ArchiveName = "template.zip"

var ErrUnsafePath = errors.New("unsafe path in template")

// Archive zips t into memory.
func Archive(t Template) ([]byte, error) {
	var buf bytes.Buffer
	if err := ArchiveTo(&buf, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ArchiveTo writes t as a zip stream to w. Every path is checked before
// anything is written, so a rejected template produces no partial output.
func ArchiveTo(w io.Writer, t Template) error {
	files := t.Files()
	names, err := SafePaths(files)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	for i, p := range files {
		content, _ := t.Content(p)
		fw, err := zw.Create(names[i])
		if err != nil {
			return fmt.Errorf("failed to add %s to archive: %w", p, err)
		}
		if _, err := io.WriteString(fw, content); err != nil {
			return fmt.Errorf("failed to write %s to archive: %w", p, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	return nil
}

// SafePaths cleans every path in files with SafePath and rejects two paths
// that clean to the same name. The result is parallel to files.
func SafePaths(files []string) ([]string, error) {
	names := make([]string, len(files))
	seen := make(map[string]string, len(files))
	for i, p := range files {
		name, err := SafePath(p)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[name]; ok {
			return nil, fmt.Errorf("%w: %q and %q both map to %q", ErrUnsafePath, prev, p, name)
		}
		seen[name] = p
		names[i] = name
	}
	return names, nil
}

// SafePath returns p as a clean, slash-separated relative path, or
// ErrUnsafePath if p is empty, absolute or escapes its root.
func SafePath(p string) (string, error) {
	raw := strings.ReplaceAll(p, "\\", "/")
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("%w: empty path", ErrUnsafePath)
	}
	if strings.HasPrefix(raw, "/") || hasDriveLetter(raw) {
		return "", fmt.Errorf("%w: absolute path %q", ErrUnsafePath, p)
	}

	clean := path.Clean(raw)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q escapes the archive root", ErrUnsafePath, p)
	}
	return clean, nil
}

func hasDriveLetter(p string) bool {
	if len(p) < 2 || p[1] != ':' {
		return false
	}
	c := p[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
