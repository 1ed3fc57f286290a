package tickets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

// The registration guards live entirely in the filter documents of the
// conditional updates; these tests pin their shape.

func TestAttendeeFilterGuardsDuplicates(t *testing.T) {
	filter := attendeeFilter("ev1", "u1")

	assert.Equal(t, "ev1", filter["eventid"])
	assert.Equal(t, bson.M{"$ne": "u1"}, filter["attendees"])
}

func TestAttendeeUpdateIsSetInsert(t *testing.T) {
	update := attendeeUpdate("u1")

	// $addToSet, not $push: a re-run can never duplicate the membership
	assert.Equal(t, bson.M{"attendees": "u1"}, update["$addToSet"])
	assert.NotContains(t, update, "$push")
}

func TestSoldFilterGuardsCapacity(t *testing.T) {
	filter := soldFilter("ev1", "tk1")

	assert.Equal(t, "ev1", filter["eventid"])
	assert.Equal(t, "tk1", filter["ticketid"])
	assert.Equal(t, bson.M{"$lt": bson.A{"$sold", "$total"}}, filter["$expr"])
}

func TestSoldUpdateIncrementsByOne(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	update := soldUpdate(now)

	assert.Equal(t, bson.M{"sold": 1}, update["$inc"])
	assert.Equal(t, bson.M{"updated_at": now}, update["$set"])
}
