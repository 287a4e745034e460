// Package resolver implements the executable resolver (C9): resolving
// a bare program name against a semicolon-delimited search path, used
// to unwrap ccache/distcc-style compiler wrappers.
package resolver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrNotFound is returned when a name cannot be resolved against a
// search path.
var ErrNotFound = errors.New("resolver: executable not found")

// Resolver resolves bare executable names, memoizing lookups since a
// build re-execs the same wrapper target many times.
type Resolver struct {
	stat  func(string) (os.FileInfo, error)
	cache *lru.Cache[string, string]
}

// New builds a Resolver backed by the real filesystem, with a bounded
// memoization cache.
func New() *Resolver {
	cache, err := lru.New[string, string](1024)
	if err != nil {
		// Only returns an error for a non-positive size, which 1024 is not.
		panic(fmt.Sprintf("resolver: building cache: %v", err))
	}
	return &Resolver{stat: os.Stat, cache: cache}
}

// FromCurrentDirectory resolves path against the given working
// directory, returning its absolute form if it exists there.
func (r *Resolver) FromCurrentDirectory(dir, path string) (string, error) {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(dir, path)
	}
	if _, err := r.stat(abs); err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return abs, nil
}

// FromPath resolves name against the PATH entry of env (a name->value
// mapping of the target process's environment).
func (r *Resolver) FromPath(name string, env map[string]string) (string, error) {
	pathVar, ok := env["PATH"]
	if !ok {
		pathVar, ok = env["Path"]
	}
	if !ok {
		return "", fmt.Errorf("%w: no PATH in environment", ErrNotFound)
	}
	return r.FromSearchPath(name, pathVar)
}

// FromSearchPath resolves name against pathList, a ';'-delimited list
// of directories (Windows PATH syntax). Empty entries are skipped. The
// first existing, canonicalized join wins; when name has no extension,
// each directory is also tried with name + ".exe".
func (r *Resolver) FromSearchPath(name string, pathList string) (string, error) {
	key := name + "\x00" + pathList
	if cached, ok := r.cache.Get(key); ok {
		return cached, nil
	}

	for _, dir := range strings.Split(pathList, ";") {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, name)
		if _, err := r.stat(candidate); err == nil {
			r.cache.Add(key, candidate)
			return candidate, nil
		}
		if filepath.Ext(name) == "" {
			withExe := candidate + ".exe"
			if _, err := r.stat(withExe); err == nil {
				r.cache.Add(key, withExe)
				return withExe, nil
			}
		}
	}

	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}
