package model

import "strconv"

// StatusCreated is the status of a match that was just created and has not
// been picked up by a server yet.
const StatusCreated = 0

var statusLabels = map[int]string{
	StatusCreated: "created",
}

// StatusLabel renders a match status for display. Statuses past creation are
// owned by the backend and shown by number.
func StatusLabel(status int) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return "status " + strconv.Itoa(status)
}
