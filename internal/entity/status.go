package entity

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In progress"
	StatusResolved   Status = "Resolved"
)

// labels written by older revisions of the intake sheet.
var legacyStatuses = map[string]Status{
	"pendiente": StatusPending,
	"en curso":  StatusInProgress,
	"resuelto":  StatusResolved,
}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved:
		return true
	default:
		return false
	}
}

// Active reports whether the claim still counts against the client's single open slot.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusInProgress
}

func ParseStatus(raw string) (Status, error) {
	v := strings.ToLower(strings.TrimSpace(raw))

	switch v {
	case "pending":
		return StatusPending, nil
	case "in progress", "in_progress", "inprogress":
		return StatusInProgress, nil
	case "resolved":
		return StatusResolved, nil
	}

	if s, ok := legacyStatuses[v]; ok {
		return s, nil
	}

	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidArgument, raw)
}
