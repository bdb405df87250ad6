package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"llmgate/internal/common/fsutil"
	"llmgate/pkg/types"
)

// ErrNoModels is returned by Resolve when a directory holds no *.gguf files.
var ErrNoModels = errors.New("no .gguf models found")

// LoadDir scans a directory for *.gguf files and returns them sorted by
// filename. ID and Name are the filename; Path is the absolute file path.
func LoadDir(dir string) ([]types.Model, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var models []types.Model
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(strings.ToLower(name), ".gguf") {
			continue
		}
		models = append(models, types.Model{ID: name, Name: name, Path: filepath.Join(abs, name)})
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
	return models, nil
}

// Resolve turns a configured model path into a concrete model file.
// A file is used as-is; a directory resolves to its first *.gguf by name.
func Resolve(path string) (types.Model, error) {
	if strings.TrimSpace(path) == "" {
		return types.Model{}, errors.New("model path is empty")
	}
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return types.Model{}, err
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return types.Model{}, fmt.Errorf("abs path: %w", err)
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return types.Model{}, fmt.Errorf("stat model: %w", err)
	}
	if !fi.IsDir() {
		name := filepath.Base(abs)
		return types.Model{ID: name, Name: name, Path: abs}, nil
	}
	models, err := LoadDir(abs)
	if err != nil {
		return types.Model{}, err
	}
	if len(models) == 0 {
		return types.Model{}, fmt.Errorf("%w in %s", ErrNoModels, abs)
	}
	return models[0], nil
}
