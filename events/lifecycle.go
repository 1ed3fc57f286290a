package events

import "sofa/structs"

// Allowed status transitions. Finished and cancelled are terminal.
var transitions = map[string][]string{
	structs.StatusDraft:     {structs.StatusPublished, structs.StatusCancelled},
	structs.StatusPublished: {structs.StatusCancelled, structs.StatusFinished},
	structs.StatusCancelled: {},
	structs.StatusFinished:  {},
}

func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
