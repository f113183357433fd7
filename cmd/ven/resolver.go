package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// fsResolver resolves an `expose NAME;` directive to NAME.ven, searched
// first alongside the running script and then under each extra root
// passed to newFSResolver (cmd/ven passes none, so only the script's
// directory is searched).
type fsResolver struct {
	roots []string
}

func newFSResolver(scriptDir string, extraRoots []string) *fsResolver {
	return &fsResolver{roots: append([]string{scriptDir}, extraRoots...)}
}

func (r *fsResolver) Resolve(name string) (source, file string, err error) {
	for _, root := range r.roots {
		candidate := filepath.Join(root, name+".ven")
		data, err := os.ReadFile(candidate)
		if err == nil {
			return string(data), candidate, nil
		}
	}
	return "", "", fmt.Errorf("expose %q: no %s.ven found under %v", name, name, r.roots)
}
