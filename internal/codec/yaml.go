package codec

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/gyaneshwarpardhi/rxndiagram/internal/diagram"
)

// YAMLCodec handles YAML snapshots.
type YAMLCodec struct{}

func NewYAMLCodec() *YAMLCodec { return &YAMLCodec{} }

func (c *YAMLCodec) Format() string      { return "yaml" }
func (c *YAMLCodec) ContentType() string { return "application/yaml" }

// Parse decodes one snapshot document. Unknown fields are rejected.
func (c *YAMLCodec) Parse(r io.Reader) (*diagram.Snapshot, error) {
	var s diagram.Snapshot
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &s, nil
}

// Export writes s as YAML with two-space indentation.
func (c *YAMLCodec) Export(s *diagram.Snapshot, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return nil
}
