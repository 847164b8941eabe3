package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the access level of a user account.
type Role string

const (
	RoleUser      Role = "User"
	RoleTherapist Role = "Therapist"
	RoleAdmin     Role = "Admin"
)

// TokenTTL is how long email verification and password reset tokens stay valid.
const TokenTTL = time.Hour

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	Name     string `bson:"name" json:"name"`
	Surname  string `bson:"surname" json:"surname"`
	Email    string `bson:"email" json:"email"`
	Password string `bson:"password" json:"-"` // bcrypt hash, never returned
	Role     Role   `bson:"role" json:"role"`

	EmailVerified                 bool       `bson:"email_verified" json:"email_verified"`
	EmailVerificationToken        string     `bson:"email_verification_token,omitempty" json:"-"`
	EmailVerificationTokenExpires *time.Time `bson:"email_verification_token_expires,omitempty" json:"-"`
	ResetPasswordToken            string     `bson:"reset_password_token,omitempty" json:"-"`
	ResetPasswordTokenExpires     *time.Time `bson:"reset_password_token_expires,omitempty" json:"-"`
}

// FullName joins name and surname for display and email bodies.
func (u *User) FullName() string {
	return u.Name + " " + u.Surname
}
