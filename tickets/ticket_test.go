package tickets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestWithinCapacity(t *testing.T) {
	cases := []struct {
		name     string
		offered  int
		oldTotal int
		newTotal int
		capacity int
		ok       bool
	}{
		{"new ticket fills remaining capacity", 30, 0, 20, 50, true},
		{"new ticket exceeds capacity", 30, 0, 21, 50, false},
		{"raise within capacity", 50, 50, 50, 50, true},
		{"raise past capacity", 50, 50, 500, 50, false},
		{"raise uses freed room from own old total", 50, 20, 30, 60, true},
		{"shrink always fits", 50, 50, 10, 50, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.ok, withinCapacity(tc.offered, tc.oldTotal, tc.newTotal, tc.capacity))
		})
	}
}

func TestEditFilterGuardsShrinkAgainstConcurrentSales(t *testing.T) {
	filter := editFilter("ev1", "tk1", 10, true)

	assert.Equal(t, "ev1", filter["eventid"])
	assert.Equal(t, "tk1", filter["ticketid"])
	// The update only matches while sold still fits under the new total
	assert.Equal(t, bson.M{"$lte": 10}, filter["sold"])
}

func TestEditFilterWithoutTotalChangeOnlyPinsTicket(t *testing.T) {
	filter := editFilter("ev1", "tk1", 0, false)

	assert.Equal(t, bson.M{"eventid": "ev1", "ticketid": "tk1"}, filter)
	assert.NotContains(t, filter, "sold")
}
