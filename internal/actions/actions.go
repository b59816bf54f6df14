// Package actions maps action names to executables in an actions directory.
package actions

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrUnknownAction is returned when no executable exists for a name.
var ErrUnknownAction = errors.New("unknown action")

// Action is an executable found in the catalog.
type Action struct {
	Name string // file name within the catalog directory
	Path string // absolute path
	Size int64
}

// Catalog resolves action names within Dir.
type Catalog struct {
	Dir string
}

// Resolve returns the executable for name. The name must stay inside Dir
// and refer to a regular file with an execute bit set.
func (c *Catalog) Resolve(name string) (Action, error) {
	root, err := filepath.Abs(c.Dir)
	if err != nil {
		return Action{}, fmt.Errorf("resolving actions dir: %w", err)
	}
	if name == "" {
		return Action{}, errors.New("empty action name")
	}

	path := filepath.Clean(filepath.Join(root, name))
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return Action{}, fmt.Errorf("resolving action %q: %w", name, err)
	}
	if rel == "." || strings.HasPrefix(rel, "..") {
		return Action{}, fmt.Errorf("action %q is outside actions dir %q", name, root)
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Action{}, fmt.Errorf("%w: %s", ErrUnknownAction, name)
		}
		return Action{}, fmt.Errorf("stat action %q: %w", name, err)
	}
	if !isExecutable(info) {
		return Action{}, fmt.Errorf("action %q is not an executable file", name)
	}
	return Action{Name: filepath.ToSlash(rel), Path: path, Size: info.Size()}, nil
}

// List returns the executables directly inside Dir, sorted by name.
func (c *Catalog) List() ([]Action, error) {
	root, err := filepath.Abs(c.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolving actions dir: %w", err)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading actions dir: %w", err)
	}

	var out []Action
	for _, e := range entries {
		info, err := os.Stat(filepath.Join(root, e.Name()))
		if err != nil || !isExecutable(info) {
			continue
		}
		out = append(out, Action{
			Name: e.Name(),
			Path: filepath.Join(root, e.Name()),
			Size: info.Size(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func isExecutable(info fs.FileInfo) bool {
	return info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0
}
