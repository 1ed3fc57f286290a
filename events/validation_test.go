package events

import (
	"strings"
	"testing"
	"time"

	"sofa/structs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func validEvent() structs.Event {
	return structs.Event{
		EventID:     "ev123",
		Title:       "Go Meetup Berlin",
		Description: strings.Repeat("x", 150),
		Date:        time.Date(2025, 9, 1, 18, 0, 0, 0, time.UTC),
		Timezone:    "Europe/Berlin",
		Location:    structs.Location{Address: "Main St 1", City: "Berlin", Country: "Germany"},
		Capacity:    50,
		Type:        "meetup",
		Tags:        []string{"tech"},
		Status:      structs.StatusPublished,
		OrganizerID: "u1",
	}
}

func TestDraftBypassesAllChecks(t *testing.T) {
	result := ValidateAt(structs.Event{Status: structs.StatusDraft}, testNow)
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
}

func TestValidPublishedEvent(t *testing.T) {
	result := ValidateAt(validEvent(), testNow)
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
}

func TestMissingTitleOnly(t *testing.T) {
	event := validEvent()
	event.Title = ""

	result := ValidateAt(event, testNow)
	assert.False(t, result.IsValid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, structs.FieldError{Field: "title", Message: "Title is required"}, result.Errors[0])
}

func TestErrorsAccumulate(t *testing.T) {
	event := validEvent()
	event.Title = "   "
	event.Description = ""
	event.Location.City = ""
	event.Capacity = 0

	result := ValidateAt(event, testNow)
	assert.False(t, result.IsValid)

	fields := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		fields = append(fields, e.Field)
	}
	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "description")
	assert.Contains(t, fields, "location.city")
	assert.Contains(t, fields, "capacity")
}

func TestMissingRequiredFieldsMatrix(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*structs.Event)
		field  string
	}{
		{"no description", func(e *structs.Event) { e.Description = "" }, "description"},
		{"no address", func(e *structs.Event) { e.Location.Address = "" }, "location.address"},
		{"no country", func(e *structs.Event) { e.Location.Country = "" }, "location.country"},
		{"no organizer", func(e *structs.Event) { e.OrganizerID = "" }, "organizer"},
		{"no date", func(e *structs.Event) { e.Date = time.Time{} }, "date"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			event := validEvent()
			tc.mutate(&event)

			result := ValidateAt(event, testNow)
			assert.False(t, result.IsValid)
			require.Len(t, result.Errors, 1)
			assert.Equal(t, tc.field, result.Errors[0].Field)
		})
	}
}

func TestDescriptionLengthBounds(t *testing.T) {
	event := validEvent()
	event.Description = strings.Repeat("x", 99)
	result := ValidateAt(event, testNow)
	assert.False(t, result.IsValid)

	event.Description = strings.Repeat("x", 1001)
	result = ValidateAt(event, testNow)
	assert.False(t, result.IsValid)

	event.Description = strings.Repeat("x", 1000)
	result = ValidateAt(event, testNow)
	assert.True(t, result.IsValid)
}

func TestDescriptionLengthCountsRunesNotBytes(t *testing.T) {
	event := validEvent()

	// 100 two-byte runes: valid even though the byte length is 200
	event.Description = strings.Repeat("ü", 100)
	result := ValidateAt(event, testNow)
	assert.True(t, result.IsValid)

	// 99 two-byte runes: too short despite 198 bytes
	event.Description = strings.Repeat("ü", 99)
	result = ValidateAt(event, testNow)
	assert.False(t, result.IsValid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "description", result.Errors[0].Field)
}

func TestPastDateRejected(t *testing.T) {
	event := validEvent()
	event.Date = testNow.Add(-time.Hour)

	result := ValidateAt(event, testNow)
	assert.False(t, result.IsValid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "date", result.Errors[0].Field)
	assert.Equal(t, "Date must be in the future", result.Errors[0].Message)
}

// The comparison renders both instants in the event's zone and
// compares the strings, so a date that is "tomorrow" in the event's
// zone passes even when the UTC day has not rolled over yet.
func TestDateComparisonUsesEventTimezone(t *testing.T) {
	// 2025-06-01 23:30 UTC is already 2025-06-02 08:30 in Tokyo
	lateNow := time.Date(2025, 6, 1, 23, 30, 0, 0, time.UTC)

	event := validEvent()
	event.Timezone = "Asia/Tokyo"
	event.Date = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC) // 09:00 Tokyo

	result := ValidateAt(event, lateNow)
	assert.True(t, result.IsValid)
}

func TestFinishedStatusRejected(t *testing.T) {
	event := validEvent()
	event.Status = structs.StatusFinished

	result := ValidateAt(event, testNow)
	assert.False(t, result.IsValid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "status", result.Errors[0].Field)
}

func TestInvalidEventType(t *testing.T) {
	event := validEvent()
	event.Type = "hackathon"

	result := ValidateAt(event, testNow)
	assert.False(t, result.IsValid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "type", result.Errors[0].Field)
}

func TestTagBounds(t *testing.T) {
	event := validEvent()
	event.Tags = []string{}
	result := ValidateAt(event, testNow)
	assert.False(t, result.IsValid)

	event.Tags = []string{"a", "b", "c", "d", "e", "f"}
	result = ValidateAt(event, testNow)
	assert.False(t, result.IsValid)

	event.Tags = []string{"a", "b", "c", "d", "e"}
	result = ValidateAt(event, testNow)
	assert.True(t, result.IsValid)
}

func TestEmptyTagRejected(t *testing.T) {
	event := validEvent()
	event.Tags = []string{"tech", "  "}

	result := ValidateAt(event, testNow)
	assert.False(t, result.IsValid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "tags", result.Errors[0].Field)
}

func TestCapacityBounds(t *testing.T) {
	event := validEvent()
	event.Capacity = 10001
	result := ValidateAt(event, testNow)
	assert.False(t, result.IsValid)

	event.Capacity = 10000
	result = ValidateAt(event, testNow)
	assert.True(t, result.IsValid)

	event.Capacity = 1
	result = ValidateAt(event, testNow)
	assert.True(t, result.IsValid)
}
