package paper

import (
	"encoding/json"
	"fmt"
	"io"
)

// Parse decodes the JSON paper description. Unknown fields are ignored - the
// input schema is consumed by external clients and we do not want to break
// them on additions.
func Parse(r io.Reader) (*Document, error) {
	var d Document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("unable to decode paper description: %w", err)
	}
	return &d, nil
}
