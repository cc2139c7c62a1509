package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/gyaneshwarpardhi/rxndiagram/internal/diagram"
)

// JSONCodec handles JSON snapshots.
type JSONCodec struct{}

func NewJSONCodec() *JSONCodec { return &JSONCodec{} }

func (c *JSONCodec) Format() string      { return "json" }
func (c *JSONCodec) ContentType() string { return "application/json" }

// Parse decodes one snapshot. Unknown fields are rejected.
func (c *JSONCodec) Parse(r io.Reader) (*diagram.Snapshot, error) {
	var s diagram.Snapshot
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return &s, nil
}

// Export writes s as indented JSON.
func (c *JSONCodec) Export(s *diagram.Snapshot, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
