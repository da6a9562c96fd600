package checks

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storageward/s3-acceptor/registry"
)

func TestBuiltinChecksRegisterCleanly(t *testing.T) {
	r, err := registry.New(registry.Config{
		Groups:  registry.DefaultGroups(),
		Entries: registry.Registered(),
		Log:     zerolog.Nop(),
	})
	require.NoError(t, err)

	units := r.GetAll()
	require.NotEmpty(t, units)

	// Every built-in check must land inside its group's declared range,
	// carry a 3-digit key and a callable entry point.
	groups := registry.DefaultGroups()
	seen := make(map[string]bool)
	for _, u := range units {
		rng := groups[u.Group]
		assert.True(t, rng.Contains(u.ID), "unit %s outside range of group %s", u.Name, u.Group)
		assert.Len(t, u.Key, 3)
		assert.NotNil(t, u.Fn, "unit %s has no entry point", u.Name)
		assert.False(t, seen[u.Key], "duplicate key %s", u.Key)
		seen[u.Key] = true
	}

	// The groups the suites reference must all be populated.
	for _, group := range []string{"basic", "multipart", "versioning", "errors", "edge"} {
		assert.NotEmpty(t, r.GetByGroup(group), "group %s has no registered checks", group)
	}
}
