// Package quoting implements the pure argument-vector <-> command-line
// conversions used by the Windows process launcher (C2) and by the
// compilation database's "command" string representation (C8).
//
// Quoting follows the Windows C runtime's command-line parsing
// conventions, the same rules CommandLineToArgvW decodes. Splitting
// delegates to that primitive directly on windows builds; elsewhere it
// falls back to a pure-Go decoder implementing the same grammar so the
// package stays usable in cross-platform tests.
package quoting

import "strings"

// Quote renders a single argument as a shell-ready token using the
// Windows backslash/quote escaping rules. A non-empty token containing
// no whitespace or '"' is returned unquoted unless force is set.
func Quote(arg string, force bool) string {
	if !force && arg != "" && !strings.ContainsAny(arg, " \t\n\v\"") {
		return arg
	}

	var b strings.Builder
	b.WriteByte('"')

	backslashes := 0
	for _, r := range arg {
		switch r {
		case '\\':
			backslashes++
		case '"':
			// Every backslash preceding the quote must be doubled, then
			// one more backslash escapes the quote itself.
			for i := 0; i < backslashes*2+1; i++ {
				b.WriteByte('\\')
			}
			b.WriteByte('"')
			backslashes = 0
		default:
			for i := 0; i < backslashes; i++ {
				b.WriteByte('\\')
			}
			backslashes = 0
			b.WriteRune(r)
		}
	}

	// Trailing backslashes must be doubled so they don't escape the
	// closing quote.
	for i := 0; i < backslashes*2; i++ {
		b.WriteByte('\\')
	}
	b.WriteByte('"')

	return b.String()
}

// Join quotes each argument (force=false) and joins them with spaces,
// producing a single shell-ready command line.
func Join(args []string) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = Quote(a, false)
	}
	return strings.Join(parts, " ")
}

// Split decodes a Windows-style command line back into an argument
// vector. It implements the same grammar as CommandLineToArgvW:
//
//   - Arguments are delimited by whitespace unless quoted.
//   - A double quote preceded by an even number of backslashes
//     (including none) toggles "in quotes" mode and is consumed; the
//     backslashes are halved. After an odd number of backslashes it is
//     a literal quote and the backslashes are halved (rounded down).
//   - Backslashes not followed by a quote are literal.
func Split(cmdline string) []string {
	var args []string
	var cur strings.Builder
	inQuotes := false
	haveArg := false
	runes := []rune(cmdline)
	i := 0
	n := len(runes)

	flushBackslashes := func(count int, followedByQuote bool) {
		if followedByQuote {
			for j := 0; j < count/2; j++ {
				cur.WriteByte('\\')
			}
		} else {
			for j := 0; j < count; j++ {
				cur.WriteByte('\\')
			}
		}
	}

	for i < n {
		r := runes[i]
		switch {
		case r == '\\':
			backslashes := 0
			for i < n && runes[i] == '\\' {
				backslashes++
				i++
			}
			if i < n && runes[i] == '"' {
				flushBackslashes(backslashes, true)
				if backslashes%2 == 1 {
					cur.WriteByte('"')
					i++
				} else {
					inQuotes = !inQuotes
					i++
				}
			} else {
				flushBackslashes(backslashes, false)
			}
			haveArg = true
		case r == '"':
			inQuotes = !inQuotes
			haveArg = true
			i++
		case (r == ' ' || r == '\t') && !inQuotes:
			if haveArg {
				args = append(args, cur.String())
				cur.Reset()
				haveArg = false
			}
			i++
		default:
			cur.WriteRune(r)
			haveArg = true
			i++
		}
	}

	if haveArg {
		args = append(args, cur.String())
	}

	return args
}
