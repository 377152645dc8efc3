package diag_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/via-lang/via/internal/diag"
	"github.com/via-lang/via/lang/token"
)

func TestBagSortsBySpan(t *testing.T) {
	var b diag.Bag
	b.Errorf(token.Span{Line: 3, Col: 1}, "third")
	b.Errorf(token.Span{Line: 1, Col: 5}, "first")
	b.Errorf(token.Span{Line: 1, Col: 1}, "second")
	b.Sort()

	recs := b.Records()
	require.Len(t, recs, 3)
	assert.Equal(t, "second", recs[0].Message)
	assert.Equal(t, "first", recs[1].Message)
	assert.Equal(t, "third", recs[2].Message)
}

func TestBagHasErrors(t *testing.T) {
	var b diag.Bag
	assert.False(t, b.HasErrors())
	b.Add(diag.Warning, token.Span{}, "just a warning")
	assert.False(t, b.HasErrors())
	b.Errorf(token.Span{}, "boom")
	assert.True(t, b.HasErrors())
}

func TestBagErrUnwrapsEachRecord(t *testing.T) {
	var b diag.Bag
	b.Errorf(token.Span{Line: 1}, "first problem")
	b.Errorf(token.Span{Line: 2}, "second problem")

	err := b.Err()
	require.Error(t, err)

	var multi interface{ Unwrap() []error }
	require.True(t, errors.As(err, &multi))
	assert.Len(t, multi.Unwrap(), 2)
}

func TestBagInternalPrefixesMessage(t *testing.T) {
	var b diag.Bag
	b.Internal(token.Span{}, "register allocator exhausted")
	require.Len(t, b.Records(), 1)
	assert.Contains(t, b.Records()[0].Message, "internal compiler error:")
}

func TestBagErrNilWhenNoErrors(t *testing.T) {
	var b diag.Bag
	b.Add(diag.Info, token.Span{}, "fyi")
	assert.NoError(t, b.Err())
}
