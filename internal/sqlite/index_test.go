package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zytronium/atlas-airbnb-clone/pkg/types"
)

func openIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := Open()
	require.NoError(t, err)
	t.Cleanup(func() { ix.Close() })
	return ix
}

func newRecord(t *testing.T, kind types.Kind, attrs map[string]any) *types.Record {
	t.Helper()
	rec, err := types.NewRecord(kind)
	require.NoError(t, err)
	for name, v := range attrs {
		require.NoError(t, rec.SetAttribute(name, v))
	}
	return rec
}

func TestIndexCount(t *testing.T) {
	ix := openIndex(t)

	n, err := ix.Count(types.KindUser)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "empty index")

	require.NoError(t, ix.Rebuild([]*types.Record{
		newRecord(t, types.KindUser, nil),
		newRecord(t, types.KindUser, nil),
		newRecord(t, types.KindState, map[string]any{"name": "Ohio"}),
	}))

	tests := []struct {
		kind types.Kind
		want int
	}{
		{types.KindUser, 2},
		{types.KindState, 1},
		{types.KindPlace, 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			n, err := ix.Count(tt.kind)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestIndexRebuildReplacesContents(t *testing.T) {
	ix := openIndex(t)

	require.NoError(t, ix.Rebuild([]*types.Record{
		newRecord(t, types.KindCity, map[string]any{"name": "Akron"}),
	}))
	require.NoError(t, ix.Rebuild([]*types.Record{
		newRecord(t, types.KindAmenity, map[string]any{"name": "Wifi"}),
	}))

	n, err := ix.Count(types.KindCity)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	keys, err := ix.Find(types.KindCity, "name", "Akron")
	require.NoError(t, err)
	assert.Empty(t, keys, "attributes of dropped records must go too")
}

func TestIndexFind(t *testing.T) {
	ix := openIndex(t)

	cozy := newRecord(t, types.KindPlace, map[string]any{
		"name":         "Cozy",
		"number_rooms": 3,
		"latitude":     37.0,
		"pets":         true,
	})
	loft := newRecord(t, types.KindPlace, map[string]any{
		"name":         "Loft",
		"number_rooms": 3,
		"latitude":     40.5,
	})
	other := newRecord(t, types.KindReview, map[string]any{"text": "Cozy"})
	require.NoError(t, ix.Rebuild([]*types.Record{cozy, loft, other}))

	both := []string{cozy.Key(), loft.Key()}
	if both[0] > both[1] {
		both[0], both[1] = both[1], both[0]
	}

	tests := []struct {
		name  string
		kind  types.Kind
		attr  string
		value string
		want  []string
	}{
		{"text match", types.KindPlace, "name", "Cozy", []string{cozy.Key()}},
		{"kind filters", types.KindReview, "text", "Cozy", []string{other.Key()}},
		{"integer match", types.KindPlace, "number_rooms", "3", both},
		{"float written without fraction", types.KindPlace, "latitude", "37", []string{cozy.Key()}},
		{"float written with fraction", types.KindPlace, "latitude", "40.50", []string{loft.Key()}},
		{"undeclared attribute compares as text", types.KindPlace, "pets", "true", []string{cozy.Key()}},
		{"no match", types.KindPlace, "name", "Castle", []string{}},
		{"unset attribute", types.KindPlace, "description", "x", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys, err := ix.Find(tt.kind, tt.attr, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, keys)
		})
	}
}

func TestIndexFindRejectsBadValue(t *testing.T) {
	ix := openIndex(t)
	require.NoError(t, ix.Rebuild(nil))

	_, err := ix.Find(types.KindPlace, "number_rooms", "three")
	assert.ErrorIs(t, err, types.ErrTypeMismatch)
}

func TestRenderValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"abc", "abc"},
		{int64(-4), "-4"},
		{float64(37), "37"},
		{1.25, "1.25"},
		{true, "true"},
		{[]any{"a", float64(1)}, `["a",1]`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, renderValue(tt.in))
	}
}

func TestIndexCloseIdempotent(t *testing.T) {
	ix, err := Open()
	require.NoError(t, err)
	require.NoError(t, ix.Close())
	assert.NoError(t, ix.Close())
}
