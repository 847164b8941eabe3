package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BookingStatus is the state of an appointment.
type BookingStatus string

const (
	BookingApproved  BookingStatus = "approved"
	BookingCancelled BookingStatus = "cancelled"
)

// CanTransition reports whether moving from s to next is a legal booking
// transition. Approved bookings can be cancelled; cancelled bookings can be
// reinstated. Same-state transitions are not transitions.
func (s BookingStatus) CanTransition(next BookingStatus) bool {
	switch {
	case s == BookingApproved && next == BookingCancelled:
		return true
	case s == BookingCancelled && next == BookingApproved:
		return true
	}
	return false
}

// MeetingType is how the session is held.
type MeetingType string

const (
	MeetingText  MeetingType = "text"
	MeetingVoice MeetingType = "voice"
	MeetingVideo MeetingType = "video"
)

// Valid reports whether m is a known meeting type.
func (m MeetingType) Valid() bool {
	switch m {
	case MeetingText, MeetingVoice, MeetingVideo:
		return true
	}
	return false
}

// Platform is the communication service the session runs on.
type Platform string

const (
	PlatformZoom     Platform = "zoom"
	PlatformSkype    Platform = "skype"
	PlatformWhatsapp Platform = "whatsapp"
)

// Valid reports whether p is a known platform.
func (p Platform) Valid() bool {
	switch p {
	case PlatformZoom, PlatformSkype, PlatformWhatsapp:
		return true
	}
	return false
}

type Booking struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	TherapistID primitive.ObjectID `bson:"therapist_id" json:"therapist_id"`

	MeetingType     MeetingType `bson:"meeting_type" json:"meeting_type"`
	Platform        Platform    `bson:"platform" json:"platform"`
	PlatformDetails string      `bson:"platform_details" json:"platform_details"`

	AppointmentDate time.Time `bson:"appointment_date" json:"appointment_date"`
	// SlotStart/SlotEnd identify the schedule slot backing this booking,
	// kept so cancellation can release the right slot.
	SlotStart string `bson:"slot_start" json:"slot_start"`
	SlotEnd   string `bson:"slot_end" json:"slot_end"`

	Status      BookingStatus       `bson:"status" json:"status"`
	CancelledBy *primitive.ObjectID `bson:"cancelled_by,omitempty" json:"cancelled_by,omitempty"`
}
