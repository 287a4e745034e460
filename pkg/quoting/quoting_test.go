package quoting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mbikovitsky/winbear/pkg/quoting"
)

func TestQuoteNoSpecialChars(t *testing.T) {
	assert.Equal(t, "cc", quoting.Quote("cc", false))
}

func TestQuoteForced(t *testing.T) {
	assert.Equal(t, `""`, quoting.Quote("", false))
	assert.Equal(t, `"cc"`, quoting.Quote("cc", true))
}

func TestQuoteWhitespace(t *testing.T) {
	assert.Equal(t, `"hello world"`, quoting.Quote("hello world", false))
}

func TestQuoteEmbeddedQuote(t *testing.T) {
	assert.Equal(t, `"say \"hi\""`, quoting.Quote(`say "hi"`, false))
}

func TestQuoteTrailingBackslash(t *testing.T) {
	assert.Equal(t, `"C:\my path\\"`, quoting.Quote(`C:\my path\`, false))
}

func TestQuoteBackslashesBeforeQuote(t *testing.T) {
	// Two backslashes followed by a quote: doubled to four, plus the
	// escaping backslash, plus the literal quote.
	assert.Equal(t, `"a\\\\\"b"`, quoting.Quote(`a\\"b`, false))
}

func TestJoin(t *testing.T) {
	assert.Equal(t, `cc -c "hello world.c"`, quoting.Join([]string{"cc", "-c", "hello world.c"}))
}

func TestSplitRoundTrip(t *testing.T) {
	cases := [][]string{
		{"cc", "-c", "-o", "a.o", "a.c"},
		{"cc", "hello world.c"},
		{"cc", `say "hi".c`},
		{"cc", `C:\Program Files\x.c`},
		{"cc", ""},
	}
	for _, args := range cases {
		line := quoting.Join(args)
		got := quoting.Split(line)
		assert.Equal(t, args, got, "round trip for %q", line)
	}
}

func TestSplitEmpty(t *testing.T) {
	assert.Empty(t, quoting.Split(""))
	assert.Empty(t, quoting.Split("   "))
}

func TestSplitWithOS(t *testing.T) {
	args, err := quoting.SplitWithOS(`cc -c "hello world.c"`)
	assert.NoError(t, err)
	assert.Equal(t, []string{"cc", "-c", "hello world.c"}, args)
}
