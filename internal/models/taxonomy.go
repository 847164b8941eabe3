package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Expertise is a flat tag vocabulary entry referenced by therapist profiles.
type Expertise struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name string             `bson:"name" json:"name"`
}

// Category is a flat tag vocabulary entry referenced by therapist profiles.
type Category struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name string             `bson:"name" json:"name"`
}
