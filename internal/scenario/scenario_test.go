package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	for _, name := range Names() {
		s, ok := Get(name)
		require.True(t, ok, name)
		assert.Equal(t, name, s.Name)
		assert.NotNil(t, s.Snapshot)
		assert.Len(t, s.Snapshot.Candles, 40)
	}

	_, ok := Get("missing")
	assert.False(t, ok)
}

func TestFixturesAreFresh(t *testing.T) {
	a := TrendPullback()
	a.Snapshot.Candles[0].Close = 0

	b := TrendPullback()
	assert.NotZero(t, b.Snapshot.Candles[0].Close)
}
