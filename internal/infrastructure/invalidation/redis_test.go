package invalidation

import (
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	payload, err := encode("mystore.com", "node-a")
	require.NoError(t, err)

	key, fromSelf, err := decode(string(payload), "node-b")
	require.NoError(t, err)
	assert.Equal(t, "mystore.com", key)
	assert.False(t, fromSelf)

	_, fromSelf, err = decode(string(payload), "node-a")
	require.NoError(t, err)
	assert.True(t, fromSelf)
}

func TestDecodeClearAll(t *testing.T) {
	payload, err := encode("", "node-a")
	require.NoError(t, err)
	key, _, err := decode(string(payload), "node-b")
	require.NoError(t, err)
	assert.Empty(t, key)
}

func TestDecodeInvalid(t *testing.T) {
	_, _, err := decode("not json", "node-a")
	assert.Error(t, err)
}

func TestNewRedisBroadcasterDefaults(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()

	a := NewRedisBroadcaster(client, "", zerolog.Nop())
	b := NewRedisBroadcaster(client, "custom", zerolog.Nop())
	assert.Equal(t, DefaultChannel, a.channel)
	assert.Equal(t, "custom", b.channel)
	assert.NotEqual(t, a.origin, b.origin, "each instance gets its own origin")
}
