package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/impql/impql/eav"
)

func TestBuildReconstructsOriginalColumns(t *testing.T) {
	triples := []eav.Triple{
		{eav.Str("e1"), eav.Str("name"), eav.Str("a")},
		{eav.Str("e1"), eav.Str("age"), eav.Int(30)},
		{eav.Str("e2"), eav.Str("name"), eav.Str("b")},
		{eav.Str("e2"), eav.Str("age"), eav.Int(40)},
	}

	// P = [1, 0, 2]: sort by attribute, then entity, then value.
	P := [3]int{1, 0, 2}
	idx := Build(triples, P)
	require.Equal(t, len(triples), idx.N)

	// Rebuild each sorted row's original-column triple from the index and
	// check it appears in the original triple set (spec invariant 2).
	for k := 0; k < idx.N; k++ {
		got := eav.Triple{idx.Col[0][k], idx.Col[1][k], idx.Col[2][k]}
		found := false
		for _, want := range triples {
			if got[0].Equal(want[0]) && got[1].Equal(want[1]) && got[2].Equal(want[2]) {
				found = true
				break
			}
		}
		assert.True(t, found, "row %d: %v not found among original triples", k, got)
	}

	// The index is sorted in P-order: column P[0] (attribute) must be
	// non-decreasing across rows.
	for k := 1; k < idx.N; k++ {
		assert.LessOrEqual(t, idx.Col[P[0]][k-1].Compare(idx.Col[P[0]][k]), 0)
	}
}

func TestBuildIdentityOrdering(t *testing.T) {
	triples := []eav.Triple{
		{eav.Int(2), eav.Int(0), eav.Int(0)},
		{eav.Int(1), eav.Int(0), eav.Int(0)},
	}
	idx := Build(triples, [3]int{0, 1, 2})
	require.Equal(t, 2, idx.N)
	assert.True(t, idx.Col[0][0].Equal(eav.Int(1)))
	assert.True(t, idx.Col[0][1].Equal(eav.Int(2)))
}

func TestBuildEmpty(t *testing.T) {
	idx := Build(nil, [3]int{0, 1, 2})
	assert.Equal(t, 0, idx.N)
	for c := 0; c < 3; c++ {
		assert.Empty(t, idx.Col[c])
	}
}
