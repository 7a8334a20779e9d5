package bagio

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/impql/impql/eav"
)

func tripleSet(t *testing.T, triples []eav.Triple) map[string]bool {
	t.Helper()
	set := make(map[string]bool, len(triples))
	for _, tr := range triples {
		set[tr[0].String()+"|"+tr[1].String()+"|"+tr[2].String()] = true
	}
	return set
}

func TestSaveLoadRoundTrip(t *testing.T) {
	bag := eav.NewBag()
	bag.Assert("e1", "name", eav.Str("a"))
	bag.Assert("e1", "age", eav.Int(30))
	bag.Assert("e2", "name", eav.Str("b"))
	bag.Assert("e2", "active", eav.Bool(true))

	var buf bytes.Buffer
	require.NoError(t, Save(&buf, bag))

	loaded, err := Load(&buf)
	require.NoError(t, err)

	want := tripleSet(t, bag.Triples())
	got := tripleSet(t, loaded.Triples())
	assert.Equal(t, want, got)
}

func TestLoadCoalescesEntriesForSameEntity(t *testing.T) {
	bag := eav.NewBag()
	bag.Assert("e1", "name", eav.Str("a"))
	bag.Assert("e1", "age", eav.Int(30))

	var buf bytes.Buffer
	require.NoError(t, Save(&buf, bag))

	loaded, err := Load(&buf)
	require.NoError(t, err)

	triples := loaded.Triples()
	require.Len(t, triples, 2)
	// Both rows must share the same reconstructed entity snapshot —
	// the loader must not mint two different refs for e1's two rows.
	assert.True(t, triples[0][0].Equal(triples[1][0]))
}

func TestRoundTripPreservesNestedEntityValue(t *testing.T) {
	bag := eav.NewBag()
	bag.Assert("parent", "name", eav.Str("p"))
	inner := eav.Ent(eav.NewEntity([]eav.AttrValue{{Attribute: "name", Value: eav.Str("p")}}))
	bag.Assert("child", "owner", inner)

	var buf bytes.Buffer
	require.NoError(t, Save(&buf, bag))

	loaded, err := Load(&buf)
	require.NoError(t, err)

	var ownerVal eav.Value
	found := false
	for _, tr := range loaded.Triples() {
		if tr[1].AsString() == "owner" {
			ownerVal = tr[2]
			found = true
		}
	}
	require.True(t, found)
	assert.Equal(t, eav.TagEntity, ownerVal.Tag())
	assert.True(t, ownerVal.Equal(inner))
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	_, err := Load(bytes.NewReader([]byte(`not json`)))
	assert.Error(t, err)
}

func TestLoadEmptyArray(t *testing.T) {
	loaded, err := Load(bytes.NewReader([]byte(`[]`)))
	require.NoError(t, err)
	assert.Empty(t, loaded.Triples())
}
