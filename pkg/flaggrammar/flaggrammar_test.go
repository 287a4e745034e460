package flaggrammar_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbikovitsky/winbear/pkg/flaggrammar"
)

func TestTableIsSorted(t *testing.T) {
	table := flaggrammar.Table()
	for i := 1; i < len(table); i++ {
		assert.Less(t, table[i-1].Key, table[i].Key, "table must be sorted by key")
	}
}

func TestTableHasSingleECategory(t *testing.T) {
	// Open Question 1: exactly one -E entry, tagged KindOfOutputNoLinking.
	count := 0
	for _, def := range flaggrammar.Table() {
		if def.Key == "-E" {
			count++
			assert.Equal(t, flaggrammar.KindOfOutputNoLinking, def.Category)
		}
	}
	assert.Equal(t, 1, count)
}

func TestLookupExact(t *testing.T) {
	def, exact, ok := flaggrammar.Lookup("-c")
	require.True(t, ok)
	assert.True(t, exact)
	assert.Equal(t, flaggrammar.KindOfOutputNoLinking, def.Category)
}

func TestLookupPartialGluedValue(t *testing.T) {
	def, exact, ok := flaggrammar.Lookup("-I/usr/include")
	require.True(t, ok)
	assert.False(t, exact)
	assert.Equal(t, flaggrammar.DirectorySearch, def.Category)
	assert.Equal(t, "-I", def.Key)
}

func TestLookupLongestPrefixWins(t *testing.T) {
	def, _, ok := flaggrammar.Lookup("-Wl,--as-needed")
	require.True(t, ok)
	assert.Equal(t, "-Wl,", def.Key)
	assert.Equal(t, flaggrammar.Linker, def.Category)
}

func TestLookupNoMatch(t *testing.T) {
	_, _, ok := flaggrammar.Lookup("source.c")
	assert.False(t, ok)
}

func TestLookupBothExactAndPartial(t *testing.T) {
	// -I alone (Both match, count=1): an exact "-I" with nothing glued.
	def, exact, ok := flaggrammar.Lookup("-I")
	require.True(t, ok)
	assert.True(t, exact)
	assert.Equal(t, flaggrammar.DirectorySearch, def.Category)
}
