package models

import (
	"errors"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Slot is one bookable window inside a schedule day. Slot identity within a
// date is the (StartTime, EndTime) pair.
type Slot struct {
	StartTime  string `bson:"start_time" json:"start_time"`
	EndTime    string `bson:"end_time" json:"end_time"`
	IsReserved bool   `bson:"is_reserved" json:"is_reserved"`
}

// Schedule holds a therapist's slots for one calendar date. A unique index on
// (therapist_id, date) guarantees at most one document per day.
type Schedule struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TherapistID primitive.ObjectID `bson:"therapist_id" json:"therapist_id"`
	Date        time.Time          `bson:"date" json:"date"`
	Slots       []Slot             `bson:"slots" json:"slots"`
}

const slotTimeLayout = "15:04"

var (
	ErrBadSlotTime  = errors.New("slot times must be HH:MM")
	ErrSlotNotAfter = errors.New("slot end must be after start")
)

// ValidateSlot checks that a slot has well-formed HH:MM times with the end
// strictly after the start.
func ValidateSlot(s Slot) error {
	start, err := time.Parse(slotTimeLayout, s.StartTime)
	if err != nil {
		return ErrBadSlotTime
	}
	end, err := time.Parse(slotTimeLayout, s.EndTime)
	if err != nil {
		return ErrBadSlotTime
	}
	if !end.After(start) {
		return ErrSlotNotAfter
	}
	return nil
}

// SortSlots orders slots by start time in place.
func SortSlots(slots []Slot) {
	sort.Slice(slots, func(i, j int) bool {
		return slots[i].StartTime < slots[j].StartTime
	})
}

// ParseScheduleDate parses a YYYY-MM-DD date string at UTC midnight, the
// canonical form schedule documents are keyed on.
func ParseScheduleDate(date string) (time.Time, error) {
	return time.Parse("2006-01-02", date)
}
