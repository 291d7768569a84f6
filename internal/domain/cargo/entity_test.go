package cargo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	for _, raw := range []string{"pending", "route_assigned", "in_transit", "delivered", "cancelled"} {
		s, ok := ParseStatus(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, Status(raw), s)
	}

	_, ok := ParseStatus("shipped")
	assert.False(t, ok)
	_, ok = ParseStatus("")
	assert.False(t, ok)
}

func TestStatusIsTerminal(t *testing.T) {
	assert.True(t, StatusDelivered.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusRouteAssigned.IsTerminal())
	assert.False(t, StatusInTransit.IsTerminal())
}
