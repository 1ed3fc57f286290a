package events

import (
	"testing"

	"sofa/structs"

	"github.com/stretchr/testify/assert"
)

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		from, to string
		allowed  bool
	}{
		{structs.StatusDraft, structs.StatusPublished, true},
		{structs.StatusDraft, structs.StatusCancelled, true},
		{structs.StatusDraft, structs.StatusFinished, false},
		{structs.StatusPublished, structs.StatusCancelled, true},
		{structs.StatusPublished, structs.StatusFinished, true},
		{structs.StatusPublished, structs.StatusDraft, false},
		{structs.StatusCancelled, structs.StatusPublished, false},
		{structs.StatusCancelled, structs.StatusDraft, false},
		{structs.StatusFinished, structs.StatusPublished, false},
		{structs.StatusFinished, structs.StatusCancelled, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestSameStatusIsNotATransition(t *testing.T) {
	for _, status := range []string{structs.StatusDraft, structs.StatusPublished, structs.StatusCancelled, structs.StatusFinished} {
		assert.True(t, CanTransition(status, status))
	}
}
