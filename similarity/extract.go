package similarity

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
)

// ExtractText pulls paragraph text out of a wordprocessing package, one line
// per paragraph in document order. Table cell paragraphs are included since
// they are ordinary w:p elements.
func ExtractText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("not a valid document package: %w", err)
	}

	var body []byte
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("unable to open document body: %w", err)
		}
		body, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("unable to read document body: %w", err)
		}
		break
	}
	if body == nil {
		return "", fmt.Errorf("not a valid document package: no document body part")
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return "", fmt.Errorf("malformed document body: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return "", fmt.Errorf("malformed document body: empty")
	}

	var lines []string
	collectParagraphs(root, &lines)
	return strings.Join(lines, "\n"), nil
}

func collectParagraphs(el *etree.Element, lines *[]string) {
	if el.Tag == "p" {
		var sb strings.Builder
		collectText(el, &sb)
		*lines = append(*lines, sb.String())
		return
	}
	for _, child := range el.ChildElements() {
		collectParagraphs(child, lines)
	}
}

func collectText(el *etree.Element, sb *strings.Builder) {
	if el.Tag == "t" {
		sb.WriteString(el.Text())
		return
	}
	for _, child := range el.ChildElements() {
		collectText(child, sb)
	}
}
