package services

import (
	"context"
	"errors"
	"time"

	"github.com/therapytreasure/backend/internal/database"
	"github.com/therapytreasure/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrSlotUnavailable is returned when a reservation finds no matching
// unreserved slot, i.e. the slot does not exist or is already booked.
var ErrSlotUnavailable = errors.New("slot is not available")

// MergeSlots upserts the (therapist, date) schedule document and appends the
// given slots, suppressing exact (start, end) duplicates. Each append is a
// conditional update keyed on slot identity, so concurrent submissions of
// the same slot cannot both land. Returns how many slots were added.
func MergeSlots(ctx context.Context, therapistID primitive.ObjectID, date time.Time, slots []models.Slot) (int, error) {
	col := database.DB.Collection("schedules")

	// Create the day document if missing. The unique (therapist_id, date)
	// index makes concurrent upserts converge on one document.
	_, err := col.UpdateOne(ctx,
		bson.M{"therapist_id": therapistID, "date": date},
		bson.M{"$setOnInsert": bson.M{
			"therapist_id": therapistID,
			"date":         date,
			"slots":        bson.A{},
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, slot := range slots {
		slot.IsReserved = false
		res, err := col.UpdateOne(ctx,
			bson.M{
				"therapist_id": therapistID,
				"date":         date,
				"slots": bson.M{"$not": bson.M{"$elemMatch": bson.M{
					"start_time": slot.StartTime,
					"end_time":   slot.EndTime,
				}}},
			},
			bson.M{"$push": bson.M{"slots": slot}},
		)
		if err != nil {
			return added, err
		}
		if res.ModifiedCount > 0 {
			added++
		}
	}

	return added, nil
}

// ReserveSlot atomically flips the unreserved (startTime, endTime) slot on
// the therapist's date schedule to reserved. Slot identity is the full
// (start, end) pair: a day may hold several slots sharing a start time, so
// keying on the start alone could reserve one slot and report another.
// Returns the reserved slot, or ErrSlotUnavailable when no free slot
// matches; this is the conflict check that prevents double booking.
func ReserveSlot(ctx context.Context, therapistID primitive.ObjectID, date time.Time, startTime, endTime string) (models.Slot, error) {
	col := database.DB.Collection("schedules")

	var schedule models.Schedule
	err := col.FindOneAndUpdate(ctx,
		bson.M{
			"therapist_id": therapistID,
			"date":         date,
			"slots": bson.M{"$elemMatch": bson.M{
				"start_time":  startTime,
				"end_time":    endTime,
				"is_reserved": false,
			}},
		},
		bson.M{"$set": bson.M{"slots.$.is_reserved": true}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&schedule)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Slot{}, ErrSlotUnavailable
		}
		return models.Slot{}, err
	}

	slot, ok := slotByIdentity(schedule.Slots, startTime, endTime)
	if !ok || !slot.IsReserved {
		return models.Slot{}, ErrSlotUnavailable
	}
	return slot, nil
}

// slotByIdentity finds the slot with the exact (start, end) pair.
func slotByIdentity(slots []models.Slot, startTime, endTime string) (models.Slot, bool) {
	for _, slot := range slots {
		if slot.StartTime == startTime && slot.EndTime == endTime {
			return slot, true
		}
	}
	return models.Slot{}, false
}

// ReleaseSlot marks the (start, end) slot unreserved again, used when a
// booking is cancelled. Releasing a slot that is already free is harmless.
func ReleaseSlot(ctx context.Context, therapistID primitive.ObjectID, date time.Time, startTime, endTime string) error {
	_, err := database.DB.Collection("schedules").UpdateOne(ctx,
		bson.M{
			"therapist_id": therapistID,
			"date":         date,
			"slots": bson.M{"$elemMatch": bson.M{
				"start_time": startTime,
				"end_time":   endTime,
			}},
		},
		bson.M{"$set": bson.M{"slots.$.is_reserved": false}},
	)
	return err
}
