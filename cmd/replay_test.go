package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplayCmd_RegistersOwnSeedFlag(t *testing.T) {
	// GIVEN the replay command's flag set
	f := replayCmd.Flags().Lookup("seed")

	// THEN the seed flag is registered on the command itself rather than
	// inherited from another command's registration
	require.NotNil(t, f)
	assert.Equal(t, "42", f.DefValue)
}
