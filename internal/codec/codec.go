// Package codec reads and writes diagram snapshots as JSON or YAML.
package codec

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gyaneshwarpardhi/rxndiagram/internal/diagram"
)

// ErrUnknownFormat is returned for a format no codec handles.
var ErrUnknownFormat = errors.New("unknown snapshot format")

// Codec converts snapshots to and from one serialization format.
type Codec interface {
	Parse(r io.Reader) (*diagram.Snapshot, error)
	Export(s *diagram.Snapshot, w io.Writer) error
	Format() string
	ContentType() string
}

// Formats lists the supported format names.
func Formats() []string { return []string{"json", "yaml"} }

// ForFormat returns the codec for name ("json", "yaml" or "yml").
func ForFormat(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	}
	return nil, fmt.Errorf("%w %q (want one of %s)", ErrUnknownFormat, name, strings.Join(Formats(), ", "))
}

// ForPath picks a codec from the file extension of path.
func ForPath(path string) (Codec, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return nil, fmt.Errorf("%w: %s has no extension", ErrUnknownFormat, path)
	}
	return ForFormat(ext)
}

// ReadFile parses the snapshot file at path. The snapshot is not validated.
func ReadFile(path string) (*diagram.Snapshot, error) {
	c, err := ForPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := c.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
