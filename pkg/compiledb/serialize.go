package compiledb

import (
	"errors"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/mbikovitsky/winbear/pkg/quoting"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrInvalidEntry is returned by Deserialize when a record is missing a
// mandatory field after parsing.
var ErrInvalidEntry = errors.New("compiledb: invalid entry")

// Format controls the on-disk representation.
type Format struct {
	// CommandAsArray selects the "arguments" array representation when
	// true, and the single "command" string representation when false.
	CommandAsArray bool
	// DropOutputField omits the optional "output" field entirely,
	// regardless of whether the entry has one.
	DropOutputField bool
}

// DefaultFormat matches the CLI's defaults: arguments-as-array, output
// field present when known.
var DefaultFormat = Format{CommandAsArray: true}

// wireEntry is the JSON wire shape. Exactly one of Arguments/Command is
// populated, chosen by Format on write and disambiguated by presence on
// read.
type wireEntry struct {
	File      string   `json:"file"`
	Directory string   `json:"directory"`
	Output    *string  `json:"output,omitempty"`
	Arguments []string `json:"arguments,omitempty"`
	Command   *string  `json:"command,omitempty"`
}

// Serialize writes entries as a pretty-printed JSON array to w, using
// the given Format.
func Serialize(w io.Writer, entries []Entry, format Format) error {
	wire := make([]wireEntry, 0, len(entries))
	for _, e := range entries {
		we := wireEntry{File: e.File, Directory: e.Directory}
		if e.HasOutput && !format.DropOutputField {
			output := e.Output
			we.Output = &output
		}
		if format.CommandAsArray {
			we.Arguments = e.Arguments
		} else {
			cmd := quoting.Join(e.Arguments)
			we.Command = &cmd
		}
		wire = append(wire, we)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(wire); err != nil {
		return fmt.Errorf("compiledb: serializing: %w", err)
	}
	return nil
}

// Deserialize reads a JSON compilation database from r, validating
// that every entry has the mandatory non-empty fields (spec.md §4.8
// "Validation on read"). A command string is split back into an
// argument vector with the OS argument-splitter.
func Deserialize(r io.Reader) ([]Entry, error) {
	var wire []wireEntry
	if err := json.NewDecoder(r).Decode(&wire); err != nil {
		return nil, fmt.Errorf("compiledb: decoding: %w", err)
	}

	entries := make([]Entry, 0, len(wire))
	for _, we := range wire {
		if we.File == "" {
			return nil, fmt.Errorf("%w: empty file", ErrInvalidEntry)
		}
		if we.Directory == "" {
			return nil, fmt.Errorf("%w: empty directory", ErrInvalidEntry)
		}
		if we.Output != nil && *we.Output == "" {
			return nil, fmt.Errorf("%w: empty output", ErrInvalidEntry)
		}

		var args []string
		switch {
		case we.Command != nil:
			parsed, err := quoting.SplitWithOS(*we.Command)
			if err != nil {
				return nil, fmt.Errorf("compiledb: splitting command: %w", err)
			}
			args = parsed
		case len(we.Arguments) > 0:
			args = we.Arguments
		}
		if len(args) == 0 {
			return nil, fmt.Errorf("%w: empty arguments", ErrInvalidEntry)
		}

		entry := Entry{File: we.File, Directory: we.Directory, Arguments: args}
		if we.Output != nil {
			entry.Output = *we.Output
			entry.HasOutput = true
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// Merge combines a prior database with freshly synthesized entries,
// deduplicating the concatenation. Prior entries are given priority:
// they are placed first, so an identical fingerprint produced again by
// a re-run keeps the prior entry's compiler path.
func Merge(prior, fresh []Entry) []Entry {
	combined := make([]Entry, 0, len(prior)+len(fresh))
	combined = append(combined, prior...)
	combined = append(combined, fresh...)
	return Deduplicate(combined)
}
