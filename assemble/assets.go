package assemble

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"ipg/formula"
)

// formulaAssets owns the transient rasterized formula files of one build.
// Every rendered file lives under a private directory and is removed either
// right after embedding or on skip, Close sweeps whatever is left.
type formulaAssets struct {
	dir string
}

func newFormulaAssets(workDir string) (*formulaAssets, error) {
	dir, err := os.MkdirTemp(workDir, "formula-*")
	if err != nil {
		return nil, fmt.Errorf("unable to create formula scratch directory: %w", err)
	}
	return &formulaAssets{dir: dir}, nil
}

// render rasterizes the formula into a scratch file and returns its path.
func (a *formulaAssets) render(s string, sizePt float64) (string, error) {
	data, err := formula.Render(s, sizePt)
	if err != nil {
		return "", err
	}
	path := filepath.Join(a.dir, uuid.New().String()+".png")
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("unable to store rasterized formula: %w", err)
	}
	return path, nil
}

func (a *formulaAssets) release(path string) {
	if len(path) > 0 {
		os.Remove(path)
	}
}

func (a *formulaAssets) Close() error {
	return os.RemoveAll(a.dir)
}
