package rabbitmq

import (
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCacheMessageRoutingKey(t *testing.T) {
	listener := &CacheHitListener{}

	parsed, err := listener.parseCacheMessageRoutingKey(amqp.Delivery{
		RoutingKey: "hms.availability-resolver.availability.v1.invalidate",
	})
	require.NoError(t, err)
	assert.Equal(t, "hms", parsed.Source)
	assert.Equal(t, "availability-resolver", parsed.Receiver)
	assert.Equal(t, CacheHitResourceTypeAvailability, parsed.ResourceType)
	assert.Equal(t, CacheHitTypeInvalidate, parsed.CacheHitType)

	parsed, err = listener.parseCacheMessageRoutingKey(amqp.Delivery{
		RoutingKey: "hms.availability-resolver._all_.v1.invalidate",
	})
	require.NoError(t, err)
	assert.Equal(t, CacheHitResourceTypeAll, parsed.ResourceType)
}

func TestParseCacheMessageRoutingKey_RejectsShortKeys(t *testing.T) {
	listener := &CacheHitListener{}

	_, err := listener.parseCacheMessageRoutingKey(amqp.Delivery{
		RoutingKey: "hms.availability-resolver.availability.invalidate",
	})
	assert.Error(t, err)
}
