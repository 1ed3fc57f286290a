package insights

import (
	"testing"
	"time"

	"sofa/agi"

	"github.com/stretchr/testify/assert"
)

func TestPortfolioHashIsOrderIndependent(t *testing.T) {
	updated := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	a := agi.EventProjection{EventID: "e1", AttendeeCount: 5, UpdatedAt: updated}
	b := agi.EventProjection{EventID: "e2", AttendeeCount: 12, UpdatedAt: updated.Add(time.Hour)}
	c := agi.EventProjection{EventID: "e3", AttendeeCount: 0, UpdatedAt: updated.Add(2 * time.Hour)}

	h1 := PortfolioHash([]agi.EventProjection{a, b, c})
	h2 := PortfolioHash([]agi.EventProjection{c, a, b})
	h3 := PortfolioHash([]agi.EventProjection{b, c, a})

	assert.Equal(t, h1, h2)
	assert.Equal(t, h1, h3)
}

func TestPortfolioHashChangesWithContent(t *testing.T) {
	updated := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	base := []agi.EventProjection{{EventID: "e1", AttendeeCount: 5, UpdatedAt: updated}}

	moreAttendees := []agi.EventProjection{{EventID: "e1", AttendeeCount: 6, UpdatedAt: updated}}
	assert.NotEqual(t, PortfolioHash(base), PortfolioHash(moreAttendees))

	touched := []agi.EventProjection{{EventID: "e1", AttendeeCount: 5, UpdatedAt: updated.Add(time.Second)}}
	assert.NotEqual(t, PortfolioHash(base), PortfolioHash(touched))

	otherEvent := []agi.EventProjection{{EventID: "e2", AttendeeCount: 5, UpdatedAt: updated}}
	assert.NotEqual(t, PortfolioHash(base), PortfolioHash(otherEvent))
}

func TestPortfolioHashIgnoresSubSecondDrift(t *testing.T) {
	updated := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	stored := []agi.EventProjection{{EventID: "e1", AttendeeCount: 5, UpdatedAt: updated}}
	roundTripped := []agi.EventProjection{{EventID: "e1", AttendeeCount: 5, UpdatedAt: updated.Add(500 * time.Millisecond)}}

	assert.Equal(t, PortfolioHash(stored), PortfolioHash(roundTripped))
}

func TestPortfolioHashOfEmptyPortfolioIsStable(t *testing.T) {
	assert.Equal(t, PortfolioHash(nil), PortfolioHash([]agi.EventProjection{}))
}
