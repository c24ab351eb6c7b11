package source

import (
	"fmt"
	"path/filepath"

	"github.com/go-git/go-git/v5"
)

// Tracked is the set of files in the index of a git repository
type Tracked struct {
	root  string
	files map[string]struct{}
}

// OpenTracked reads the index of the git repository that contains dir
func OpenTracked(dir string) (*Tracked, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening git repository at %s: %w", dir, err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("opening worktree: %w", err)
	}
	index, err := repo.Storer.Index()
	if err != nil {
		return nil, fmt.Errorf("reading git index: %w", err)
	}

	root, err := canonical(worktree.Filesystem.Root())
	if err != nil {
		return nil, err
	}
	t := &Tracked{root: root, files: make(map[string]struct{}, len(index.Entries))}
	for _, entry := range index.Entries {
		t.files[entry.Name] = struct{}{}
	}
	return t, nil
}

// Contains reports whether a file is tracked
func (t *Tracked) Contains(path string) bool {
	abs, err := canonical(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(t.root, abs)
	if err != nil {
		return false
	}
	_, ok := t.files[filepath.ToSlash(rel)]
	return ok
}

// Filter keeps the paths that are tracked
func (t *Tracked) Filter(paths []string) []string {
	var kept []string
	for _, path := range paths {
		if t.Contains(path) {
			kept = append(kept, path)
		}
	}
	return kept
}

// canonical makes a path absolute, and resolves symbolic links in it so that
// paths inside and outside of the repository compare equal
func canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}
