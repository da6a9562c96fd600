package registry

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storageward/s3-acceptor/config"
)

func noopFn(ctx context.Context, client *s3.Client, cfg *config.Config) error {
	return nil
}

func newTestRegistry(t *testing.T, groups map[string]Range, entries []Entry) *Registry {
	t.Helper()
	r, err := New(Config{
		Groups:  groups,
		Entries: entries,
		Log:     zerolog.Nop(),
	})
	require.NoError(t, err)
	return r
}

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "16", want: "016"},
		{in: "016", want: "016"},
		{in: "0016", want: "016"},
		{in: "1", want: "001"},
		{in: "400", want: "400"},
		{in: " 7 ", want: "007"},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
		{in: "-3", wantErr: true},
	}
	for _, tc := range tests {
		got, err := NormalizeID(tc.in)
		if tc.wantErr {
			assert.Error(t, err, "input %q", tc.in)
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestGetByIDAcceptsAnyPadding(t *testing.T) {
	r := newTestRegistry(t, map[string]Range{"basic": {Min: 1, Max: 99}}, []Entry{
		{Group: "basic", Name: "016_list_objects", Fn: noopFn},
	})

	for _, id := range []string{"16", "016", "0016"} {
		unit, ok := r.GetByID(id)
		require.True(t, ok, "lookup %q", id)
		assert.Equal(t, "016", unit.Key)
		assert.Equal(t, "016_list_objects", unit.Name)
	}

	_, ok := r.GetByID("17")
	assert.False(t, ok)
	_, ok = r.GetByID("not-a-number")
	assert.False(t, ok)
}

func TestAllKeysAreThreeDigits(t *testing.T) {
	r := newTestRegistry(t, DefaultGroups(), []Entry{
		{Group: "basic", Name: "1_a", Fn: noopFn},
		{Group: "basic", Name: "42_b", Fn: noopFn},
		{Group: "multipart", Name: "100_c", Fn: noopFn},
		{Group: "edge", Name: "400_d", Fn: noopFn},
	})

	for _, u := range r.GetAll() {
		assert.Len(t, u.Key, 3, "unit %s", u.Name)
	}
}

func TestRangeIsAuthoritative(t *testing.T) {
	// 150 registered under basic whose range is [1,99]: excluded.
	r := newTestRegistry(t, map[string]Range{
		"basic":     {Min: 1, Max: 99},
		"multipart": {Min: 100, Max: 199},
	}, []Entry{
		{Group: "basic", Name: "150_misplaced", Fn: noopFn},
		{Group: "basic", Name: "003_put_object", Fn: noopFn},
	})

	_, ok := r.GetByID("150")
	assert.False(t, ok)
	assert.Len(t, r.GetAll(), 1)
}

func TestGetByGroupHonorsRange(t *testing.T) {
	r := newTestRegistry(t, DefaultGroups(), []Entry{
		{Group: "basic", Name: "001_a", Fn: noopFn},
		{Group: "basic", Name: "050_b", Fn: noopFn},
		{Group: "multipart", Name: "101_c", Fn: noopFn},
	})

	units := r.GetByGroup("basic")
	require.Len(t, units, 2)
	for _, u := range units {
		assert.GreaterOrEqual(t, u.ID, 1)
		assert.LessOrEqual(t, u.ID, 99)
	}
	// Ordered by ID.
	assert.Equal(t, "001", units[0].Key)
	assert.Equal(t, "050", units[1].Key)
}

func TestUnknownGroupSilentlySkipped(t *testing.T) {
	r := newTestRegistry(t, map[string]Range{"basic": {Min: 1, Max: 99}}, []Entry{
		{Group: "nonexistent", Name: "001_x", Fn: noopFn},
	})
	assert.Empty(t, r.GetAll())
}

func TestDuplicateIDKeepsFirstInSortedOrder(t *testing.T) {
	entries := []Entry{
		{Group: "basic", Name: "016_zebra", Fn: noopFn},
		{Group: "basic", Name: "016_apple", Fn: noopFn},
		{Group: "basic", Name: "16_banana", Fn: noopFn},
	}
	r := newTestRegistry(t, map[string]Range{"basic": {Min: 1, Max: 99}}, entries)

	unit, ok := r.GetByID("16")
	require.True(t, ok)
	assert.Equal(t, "016_apple", unit.Name)
	assert.Len(t, r.GetAll(), 1)
}

func TestOverlappingRangesRejected(t *testing.T) {
	_, err := New(Config{
		Groups: map[string]Range{
			"a": {Min: 1, Max: 100},
			"b": {Min: 100, Max: 199},
		},
		Log: zerolog.Nop(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overlap")
}

func TestEmptyGroupTableRejected(t *testing.T) {
	_, err := New(Config{Log: zerolog.Nop()})
	require.Error(t, err)
}

func TestNameWithoutLeadingDigitsExcluded(t *testing.T) {
	r := newTestRegistry(t, map[string]Range{"basic": {Min: 1, Max: 99}}, []Entry{
		{Group: "basic", Name: "no_digits_here", Fn: noopFn},
	})
	assert.Empty(t, r.GetAll())
}

func TestGetAllOrderedAcrossGroups(t *testing.T) {
	r := newTestRegistry(t, DefaultGroups(), []Entry{
		{Group: "edge", Name: "400_d", Fn: noopFn},
		{Group: "basic", Name: "002_a", Fn: noopFn},
		{Group: "multipart", Name: "100_c", Fn: noopFn},
	})

	var keys []string
	for _, u := range r.GetAll() {
		keys = append(keys, u.Key)
	}
	assert.Equal(t, []string{"002", "100", "400"}, keys)
}

func TestUnitFieldsPopulated(t *testing.T) {
	r := newTestRegistry(t, DefaultGroups(), []Entry{
		{Group: "versioning", Name: "201_versioned_put", Fn: noopFn},
	})

	unit, ok := r.GetByID("201")
	require.True(t, ok)
	assert.Equal(t, 201, unit.ID)
	assert.Equal(t, "201", unit.Key)
	assert.Equal(t, "201_versioned_put", unit.Name)
	assert.Equal(t, "versioning", unit.Group)
	require.NotNil(t, unit.Fn)
}
