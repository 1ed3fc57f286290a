package events

import (
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"sofa/structs"
	"sofa/tz"
)

var allowedStatuses = []string{structs.StatusDraft, structs.StatusPublished, structs.StatusCancelled}

// Validate checks an event for publishability. Draft events skip every
// check so in-progress data can always be saved.
func Validate(event structs.Event) structs.ValidationResult {
	return ValidateAt(event, time.Now())
}

// ValidateAt accumulates all field errors instead of stopping at the
// first one.
func ValidateAt(event structs.Event, now time.Time) structs.ValidationResult {
	if event.Status == structs.StatusDraft {
		return structs.ValidationResult{IsValid: true, Errors: []structs.FieldError{}}
	}

	var errs []structs.FieldError
	addErr := func(field, message string) {
		errs = append(errs, structs.FieldError{Field: field, Message: message})
	}

	if strings.TrimSpace(event.Title) == "" {
		addErr("title", "Title is required")
	}

	desc := strings.TrimSpace(event.Description)
	if desc == "" {
		addErr("description", "Description is required")
	} else if n := utf8.RuneCountInString(desc); n < 100 || n > 1000 {
		addErr("description", "Description must be between 100 and 1000 characters")
	}

	if strings.TrimSpace(event.Location.City) == "" {
		addErr("location.city", "City is required")
	}
	if strings.TrimSpace(event.Location.Country) == "" {
		addErr("location.country", "Country is required")
	}
	if strings.TrimSpace(event.Location.Address) == "" {
		addErr("location.address", "Address is required")
	}

	if event.Date.IsZero() {
		addErr("date", "Date is required")
	} else {
		// Both sides are rendered in the event's own timezone and
		// compared as strings. Kept for compatibility with the
		// original dashboard behavior.
		zone := event.Timezone
		if zone == "" {
			zone = "UTC"
		}
		eventStr, err1 := tz.FormatInZone(event.Date, zone)
		nowStr, err2 := tz.FormatInZone(now, zone)
		if err1 != nil || err2 != nil {
			addErr("timezone", "Unknown timezone")
		} else if eventStr <= nowStr {
			addErr("date", "Date must be in the future")
		}
	}

	if event.Capacity < 1 || event.Capacity > 10000 {
		addErr("capacity", "Capacity must be between 1 and 10000")
	}

	if strings.TrimSpace(event.OrganizerID) == "" {
		addErr("organizer", "Organizer is required")
	}

	if !slices.Contains(allowedStatuses, event.Status) {
		addErr("status", "Invalid status")
	}

	if !slices.Contains(structs.EventTypes, event.Type) {
		addErr("type", "Invalid event type")
	}

	if len(event.Tags) < 1 || len(event.Tags) > 5 {
		addErr("tags", "Tags must contain between 1 and 5 entries")
	} else {
		for _, tag := range event.Tags {
			if strings.TrimSpace(tag) == "" {
				addErr("tags", "Tags must not be empty")
				break
			}
		}
	}

	if errs == nil {
		errs = []structs.FieldError{}
	}
	return structs.ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}
