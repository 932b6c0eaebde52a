package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mm0-org/mmb/env"
	"github.com/mm0-org/mmb/ident"
)

func sp(n int) ident.Span { return ident.Span{File: "t.mm1", Start: n, End: n + 1} }

func TestMergeEmptySecondaryIsNoop(t *testing.T) {
	primary := env.New()
	_, err := primary.AddSort("wff", sp(0), 0)
	require.NoError(t, err)
	secondary := env.New()

	res, err := Merge(primary, secondary)
	require.NoError(t, err)
	assert.True(t, res.Diagnostics.Empty())
	assert.Equal(t, 1, primary.Sorts.Len())
}

// TestMergeRenumbersOnSharedIdentifierSpace covers §8 property 3: merging
// a secondary environment whose sorts were numbered starting from 0 into a
// primary that already has sorts produces a non-identity renumbering.
func TestMergeRenumbersOnSharedIdentifierSpace(t *testing.T) {
	primary := env.New()
	_, err := primary.AddSort("wff", sp(0), 0)
	require.NoError(t, err)

	secondary := env.New()
	secID, err := secondary.AddSort("nat", sp(100), 0)
	require.NoError(t, err)

	res, err := Merge(primary, secondary)
	require.NoError(t, err)

	newID := res.Remapper.Sort(secID)
	assert.NotEqual(t, secID, newID, "secondary id should not collide with primary's id space")
	assert.Equal(t, "nat", primary.Sorts.Get(newID).Name)
}

func TestMergeSameSpanSortIsIdempotent(t *testing.T) {
	primary := env.New()
	_, err := primary.AddSort("wff", sp(0), 0)
	require.NoError(t, err)
	secondary := env.New()
	_, err = secondary.AddSort("wff", sp(0), 0)
	require.NoError(t, err)

	res, err := Merge(primary, secondary)
	require.NoError(t, err)
	assert.True(t, res.Diagnostics.Empty(), "idempotent re-admission should raise no diagnostics")
	assert.Equal(t, 1, primary.Sorts.Len())
}

func TestMergeConflictingSortIsRecoverable(t *testing.T) {
	primary := env.New()
	_, err := primary.AddSort("wff", sp(0), 0)
	require.NoError(t, err)
	secondary := env.New()
	_, err = secondary.AddSort("wff", sp(50), 0)
	require.NoError(t, err)

	res, err := Merge(primary, secondary)
	require.NoError(t, err, "same-kind conflict should be recoverable, not fatal")
	assert.False(t, res.Diagnostics.Empty(), "expected a redeclaration diagnostic")
}

func TestMergeCrossKindRedeclarationIsFatal(t *testing.T) {
	primary := env.New()
	_, err := primary.AddTerm("foo", sp(0), func() env.TermRecord { return env.TermRecord{} })
	require.NoError(t, err)
	secondary := env.New()
	_, err = secondary.AddThm("foo", sp(0), func() env.TheoremRecord { return env.TheoremRecord{} })
	require.NoError(t, err)

	_, err = Merge(primary, secondary)
	assert.Error(t, err, "cross-kind redeclaration must abort the merge")
}

func TestMergeAtomsByName(t *testing.T) {
	primary := env.New()
	primary.Intern("shared")
	secondary := env.New()
	secondary.Intern("shared")
	secondary.Intern("only-in-secondary")

	res, err := Merge(primary, secondary)
	require.NoError(t, err)
	assert.Equal(t, 2, primary.Atoms.Len())
	assert.Len(t, res.AtomMap, 2)
}
