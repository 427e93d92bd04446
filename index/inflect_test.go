package index

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPluralize(t *testing.T) {
	require.Equal(t, "users", pluralize("user"))
	require.Equal(t, "companies", pluralize("company"))
	require.Equal(t, "days", pluralize("day"))
	require.Equal(t, "statuses", pluralize("status"))
	require.Equal(t, "boxes", pluralize("box"))
	require.Equal(t, "branches", pluralize("branch"))
	require.Equal(t, "team_ids", pluralize("team_id"))
}

func TestSingularize(t *testing.T) {
	require.Equal(t, "user", singularize("users"))
	require.Equal(t, "company", singularize("companies"))
	require.Equal(t, "status", singularize("statuses"))
	require.Equal(t, "box", singularize("boxes"))
	require.Equal(t, "branch", singularize("branches"))
	require.Equal(t, "class", singularize("class"))
	require.Equal(t, "user", singularize("user"))
}
