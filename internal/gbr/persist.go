package gbr

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// BackupPath returns the redundant artifact path for a primary path.
func BackupPath(path string) string {
	return path + ".bak"
}

// Save writes the model as JSON to every given path. Each file is written to
// a temporary sibling and renamed into place.
func (m *Model) Save(paths ...string) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding model: %w", err)
	}
	for _, p := range paths {
		if err := writeFileAtomic(p, data); err != nil {
			return fmt.Errorf("saving model to %s: %w", p, err)
		}
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Load reads a model written by Save and checks that it is usable.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding model %s: %w", path, err)
	}
	if err := m.check(); err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	}
	return &m, nil
}

func (m *Model) check() error {
	if len(m.Trees) == 0 {
		return fmt.Errorf("no trees")
	}
	nf := m.NumFeatures()
	if nf == 0 {
		return fmt.Errorf("no feature importances")
	}
	if len(m.Columns) > 0 && len(m.Columns) != nf {
		return fmt.Errorf("%d columns for %d features", len(m.Columns), nf)
	}
	for ti, t := range m.Trees {
		if len(t.Nodes) == 0 {
			return fmt.Errorf("tree %d is empty", ti)
		}
		for ni, n := range t.Nodes {
			if n.Left == leaf {
				continue
			}
			if n.Feature < 0 || n.Feature >= nf ||
				n.Left <= ni || n.Left >= len(t.Nodes) ||
				n.Right <= ni || n.Right >= len(t.Nodes) {
				return fmt.Errorf("tree %d node %d is malformed", ti, ni)
			}
		}
	}
	return nil
}
