package faredata_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antigravity/transitfare/internal/faredata"
)

const testStationConnectionsCSV = `stop_a,stop_b
place-a,place-b
`

func TestLoadConnectedPairs_IsBidirectional(t *testing.T) {
	pairs, err := faredata.LoadConnectedPairs(strings.NewReader(testStationConnectionsCSV))
	require.NoError(t, err)

	assert.True(t, pairs.Has("place-a", "place-b"))
	assert.True(t, pairs.Has("place-b", "place-a"))
	assert.False(t, pairs.Has("place-a", "place-c"))
}

func TestLoadDefaultConnectedPairs_LoadsPackagedCSV(t *testing.T) {
	pairs, err := faredata.LoadDefaultConnectedPairs()
	require.NoError(t, err)
	assert.True(t, pairs.Has("place-dwnxg", "place-pktrm"))
}
