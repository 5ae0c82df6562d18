package models

import (
	"time"
)

type Status string

const (
	StatusWaiting  Status = "WAITING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// CanTransition reports whether a booking may move from one status to another.
// WAITING is the only non-terminal status.
func CanTransition(from, to Status) bool {
	return from == StatusWaiting && (to == StatusApproved || to == StatusRejected)
}

// Decision maps the owner's verdict to the terminal status.
func Decision(approved bool) Status {
	if approved {
		return StatusApproved
	}
	return StatusRejected
}

type Booking struct {
	ID     int64     `json:"id"`
	Item   Item      `json:"item"`
	Booker User      `json:"booker"`
	Status Status    `json:"status"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

// BookingDraft is what a booker submits; everything else is resolved server side.
type BookingDraft struct {
	ItemID int64
	Start  time.Time
	End    time.Time
}

// IsValidWindow rejects empty and inverted windows: end must be strictly after start.
func IsValidWindow(start, end time.Time) bool {
	return end.After(start)
}

// Overlaps reports whether two half-open windows [start, end) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
