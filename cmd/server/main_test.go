package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCommand()

	for _, name := range []string{"serve", "migrate", "run-job"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestRunJobCommand_RequiresJobName(t *testing.T) {
	root := newRootCommand()
	root.SetArgs([]string{"run-job"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestRunJobCommand_ListsJobs(t *testing.T) {
	cmd := newRunJobCommand()
	assert.Contains(t, cmd.Long, "scheduled-posts")
	assert.Contains(t, cmd.Long, "daily-analytics")
	assert.Contains(t, cmd.Long, "content-generation")
}
