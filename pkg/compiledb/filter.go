package compiledb

import (
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"github.com/twmb/murmur3"
)

// ContentFilter keeps an entry only if its file exists on FS (checked
// only when FS is non-nil), is contained in at least one of Include
// (when non-empty), and is not contained in any of Exclude.
//
// "Contained in" is a component-wise prefix comparison, exactly as
// spec.md §9's Open Question 3 describes and deliberately leaves
// uncanonicalized: "." and ".." path components are compared
// literally, not resolved.
type ContentFilter struct {
	FS      afero.Fs
	Include []string
	Exclude []string
}

// Keep applies the content filter to a single entry.
func (f ContentFilter) Keep(entry Entry) bool {
	if f.FS != nil {
		if exists, err := afero.Exists(f.FS, entry.File); err != nil || !exists {
			return false
		}
	}

	if len(f.Include) > 0 {
		included := false
		for _, p := range f.Include {
			if containsPath(p, entry.File) {
				included = true
				break
			}
		}
		if !included {
			return false
		}
	}

	for _, p := range f.Exclude {
		if containsPath(p, entry.File) {
			return false
		}
	}

	return true
}

// containsPath reports whether file's path components start with
// container's, compared component by component without any
// canonicalization (no resolution of "." or "..").
func containsPath(container, file string) bool {
	containerParts := splitPath(container)
	fileParts := splitPath(file)
	if len(containerParts) > len(fileParts) {
		return false
	}
	for i, part := range containerParts {
		if fileParts[i] != part {
			return false
		}
	}
	return true
}

func splitPath(p string) []string {
	p = strings.ReplaceAll(p, "\\", "/")
	var parts []string
	for _, part := range strings.Split(p, "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

// Deduplicate filters entries, keeping the first occurrence of each
// fingerprint and dropping later ones. The fingerprint is a
// deterministic hash (murmur3) over the canonicalized (file,
// arguments[1:]) tuple — the spelling spec.md §9's Open Question 2
// calls for in place of the original's non-stable, reversed-string
// fingerprint. Compiler-agnostic dedup (arguments[0], the compiler
// path, is excluded) matches the original intent.
func Deduplicate(entries []Entry) []Entry {
	seen := make(map[uint64]bool, len(entries))
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		fp := fingerprint(e)
		if seen[fp] {
			continue
		}
		seen[fp] = true
		out = append(out, e)
	}
	return out
}

func fingerprint(e Entry) uint64 {
	h := murmur3.New64(nil)
	_, _ = h.Write([]byte(e.File))
	_, _ = h.Write([]byte{0})
	if len(e.Arguments) > 1 {
		for _, a := range e.Arguments[1:] {
			_, _ = h.Write([]byte(a))
			_, _ = h.Write([]byte{0})
		}
	}
	return h.Sum64()
}

// fingerprintKey renders an entry's fingerprint as a hexadecimal string.
func fingerprintKey(e Entry) string {
	return strconv.FormatUint(fingerprint(e), 16)
}
