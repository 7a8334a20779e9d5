package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/impql/impql/eav"
)

type recordingObserver struct {
	calls []Outcome
}

func (r *recordingObserver) ObserveRun(cursor int, outcome Outcome) {
	r.calls = append(r.calls, outcome)
}

func standardBag() *eav.Bag {
	b := eav.NewBag()
	b.Assert("e1", "name", eav.Str("a"))
	b.Assert("e1", "age", eav.Int(30))
	return b
}

func TestRunAtCompilesAndRunsTheContainingBlock(t *testing.T) {
	code := "x.name = \"a\"\n"
	obs := &recordingObserver{}
	sess := NewSession(standardBag(), code, obs, nil)

	out := sess.RunAt(0)
	require.NoError(t, out.ParseErr)
	require.NoError(t, out.CompileErr)
	require.NoError(t, out.RunErr)
	require.Equal(t, []string{"x"}, out.Named)
	require.Len(t, out.Results, 1)
	require.Len(t, obs.calls, 1)
}

func TestRunAtIsolatesParseErrorsPerBlock(t *testing.T) {
	// Block 1 is a malformed pattern; block 2 (after the blank-line
	// separator) is valid and must still run cleanly at its own cursor.
	code := "x = = 1\n\nx.name = \"a\"\n"
	sess := NewSession(standardBag(), code, nil, nil)

	firstBlockOut := sess.RunAt(0)
	require.Error(t, firstBlockOut.ParseErr)

	secondBlockCursor := len(code) - 2
	secondBlockOut := sess.RunAt(secondBlockCursor)
	require.NoError(t, secondBlockOut.ParseErr)
	require.NoError(t, secondBlockOut.CompileErr)
	require.NoError(t, secondBlockOut.RunErr)
	require.Len(t, secondBlockOut.Results, 1)
}

func TestRunAtReportsCompileErrorForUnsatisfiableSlot(t *testing.T) {
	code := "x = y\n"
	sess := NewSession(standardBag(), code, nil, nil)
	out := sess.RunAt(0)
	require.Error(t, out.CompileErr)
	assert.True(t, eav.ErrNoConstraintsOnSlot.Is(out.CompileErr))
}

func TestRunAtNoBlockAtCursorReportsParseErr(t *testing.T) {
	sess := NewSession(standardBag(), "x.name = \"a\"\n", nil, nil)
	out := sess.RunAt(10_000)
	require.Error(t, out.ParseErr)
}

func TestRunAtAppliesAssertsOntoBag(t *testing.T) {
	code := "x.name = \"a\"\n+x.nick = \"a\"\n"
	sess := NewSession(standardBag(), code, nil, nil)

	out := sess.RunAt(0)
	require.NoError(t, out.RunErr)
	require.Len(t, out.Asserts, 1)

	triples := sess.Bag().Triples()
	found := false
	for _, tr := range triples {
		if tr[1].AsString() == "nick" && tr[2].Equal(eav.Str("a")) {
			found = true
		}
	}
	assert.True(t, found, "asserted triple must be written back onto the session's bag")
}

func TestRunAtSecondRunReusesSameEntityForRepeatedAssert(t *testing.T) {
	// Running the same assert-producing block twice must not mint a
	// second, distinct entity for e1 — both asserts resolve back onto
	// the same existing ref via RefForEntityValue.
	code := "x.name = \"a\"\n+x.nick = \"a\"\n"
	sess := NewSession(standardBag(), code, nil, nil)

	sess.RunAt(0)
	sess.RunAt(0)

	nickCount := 0
	for _, tr := range sess.Bag().Triples() {
		if tr[1].AsString() == "nick" {
			nickCount++
		}
	}
	// The nick attribute is re-asserted onto the same ref both times, so
	// Bag.Assert overwrites rather than duplicating the row.
	assert.Equal(t, 1, nickCount)
}
