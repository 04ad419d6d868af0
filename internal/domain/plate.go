package domain

import (
	"image"
	"time"
)

// CameraRole tags a pipeline as watching the entry or the exit gate.
type CameraRole string

const (
	RoleEntry CameraRole = "entry"
	RoleExit  CameraRole = "exit"
)

func (r CameraRole) Valid() bool {
	return r == RoleEntry || r == RoleExit
}

func (r CameraRole) EventType() AccessEventType {
	switch r {
	case RoleEntry:
		return EventEntry
	case RoleExit:
		return EventExit
	}
	return EventUnspecified
}

// Location is the free-form camera_location label written to the access log.
func (r CameraRole) Location() string {
	if r == RoleExit {
		return "main_exit"
	}
	return "main_entrance"
}

// Label is the capitalized form used for capture directories and text logs.
func (r CameraRole) Label() string {
	if r == RoleExit {
		return "Exit"
	}
	return "Entry"
}

// PlateReading is one normalized plate string produced from a single detected
// region. It is consumed immediately by the access recorder and never persisted.
type PlateReading struct {
	Text         string
	CapturedAt   time.Time
	SourceRegion image.Image // nil for readings ingested from remote devices
	CameraRole   CameraRole
}

// DetectionNotification is pushed to dashboard clients over WebSocket after a
// reading has been recorded.
type DetectionNotification struct {
	EventID        string          `json:"event_id"`
	PlateNumber    string          `json:"plate_number"`
	Status         MemberStatus    `json:"status"`
	EventType      AccessEventType `json:"event_type"`
	CameraLocation string          `json:"camera_location"`
	ImagePath      string          `json:"image_path,omitempty"`
	Timestamp      time.Time       `json:"timestamp"`
}
