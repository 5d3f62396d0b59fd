package docx

import (
	"bytes"
	"fmt"

	fixzip "github.com/hidez8891/zip"
)

// StripDataDescriptors rewrites the package so that entries carry sizes in
// their local headers instead of trailing data descriptors. Some strict OOXML
// consumers choke on streamed archives, this pass makes the package safe for
// them.
func StripDataDescriptors(data []byte) ([]byte, error) {
	r, err := fixzip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("unable to read produced archive: %w", err)
	}

	var buf bytes.Buffer
	w := fixzip.NewWriter(&buf)

	for _, file := range r.File {
		// unset data descriptor flag.
		file.Flags &= ^fixzip.FlagDataDescriptor

		// copy zip entry
		if err := w.CopyFile(file); err != nil {
			return nil, fmt.Errorf("unable to rewrite archive entry (%s): %w", file.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("unable to finalize rewritten archive: %w", err)
	}
	return buf.Bytes(), nil
}
