package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ApplicationStatus is the state of a therapist application.
// Transitions are one-directional: a decided application stays decided.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// CanTransition reports whether moving from s to next is a legal
// application transition. Only pending applications can be decided.
func (s ApplicationStatus) CanTransition(next ApplicationStatus) bool {
	if s != ApplicationPending {
		return false
	}
	return next == ApplicationApproved || next == ApplicationRejected
}

// Valid reports whether s is a known application status.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationApproved, ApplicationRejected:
		return true
	}
	return false
}

// University is one education entry on a therapist profile.
type University struct {
	UniName        string `bson:"uni_name" json:"uni_name"`
	Degree         string `bson:"degree" json:"degree"`
	Department     string `bson:"department" json:"department"`
	GraduationYear string `bson:"graduation_year" json:"graduation_year"`
}

type Therapist struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	UserID primitive.ObjectID `bson:"user_id" json:"user_id"`

	Phone         string       `bson:"phone" json:"phone"`
	Title         string       `bson:"title" json:"title"`
	LicenceNumber string       `bson:"licence_number" json:"licence_number"`
	University    []University `bson:"university" json:"university"`

	// Cloudinary secure URLs for uploaded documents.
	CV               string `bson:"cv,omitempty" json:"cv,omitempty"`
	MotivationLetter string `bson:"motivation_letter,omitempty" json:"motivation_letter,omitempty"`
	ReferenceLetter  string `bson:"reference_letter,omitempty" json:"reference_letter,omitempty"`
	PhotoURL         string `bson:"photo_url,omitempty" json:"photo_url,omitempty"`

	ExpertiseAreas []primitive.ObjectID `bson:"expertise_areas" json:"expertise_areas"`
	CategoryAreas  []primitive.ObjectID `bson:"category_areas" json:"category_areas"`

	Certificates string `bson:"certificates,omitempty" json:"certificates,omitempty"`
	About        string `bson:"about,omitempty" json:"about,omitempty"`

	Status    ApplicationStatus `bson:"status" json:"status"`
	IsVisible bool              `bson:"is_visible" json:"is_visible"`
}
