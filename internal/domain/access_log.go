package domain

import "time"

type MemberStatus string

const (
	StatusMember MemberStatus = "member"
	StatusGuest  MemberStatus = "guest"
)

type AccessEventType string

const (
	EventEntry       AccessEventType = "entry"
	EventExit        AccessEventType = "exit"
	EventUnspecified AccessEventType = "unspecified"
)

// AccessLogEntry is an append-only record; rows are never updated or deleted.
type AccessLogEntry struct {
	ID             int             `json:"id"`
	PlateNumber    string          `json:"plate_number"`
	Status         MemberStatus    `json:"status"`
	EventType      AccessEventType `json:"event_type"`
	CameraLocation string          `json:"camera_location"`
	Timestamp      time.Time       `json:"timestamp"`
}
