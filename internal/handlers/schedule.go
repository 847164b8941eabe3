package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/therapytreasure/backend/internal/database"
	"github.com/therapytreasure/backend/internal/middleware"
	"github.com/therapytreasure/backend/internal/models"
	"github.com/therapytreasure/backend/internal/services"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type slotRequest struct {
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

type SubmitScheduleRequest struct {
	Date  string        `json:"date" validate:"required"`
	Slots []slotRequest `json:"slots" validate:"required,min=1,dive"`
}

// SubmitSchedule adds availability slots to the authenticated therapist's
// schedule for one date. Existing slots are kept; submitting a slot that is
// already on the day is a no-op.
func SubmitSchedule(w http.ResponseWriter, r *http.Request) {
	auth, ok := middleware.AuthFrom(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, false, "Authentication required")
		return
	}

	var req SubmitScheduleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	date, err := models.ParseScheduleDate(req.Date)
	if err != nil {
		writeFieldErrors(w, []FieldError{{Param: "date", Msg: "Date must be in YYYY-MM-DD format"}})
		return
	}
	if date.Before(time.Now().Truncate(24 * time.Hour)) {
		writeFieldErrors(w, []FieldError{{Param: "date", Msg: "Date cannot be in the past"}})
		return
	}

	slots := make([]models.Slot, 0, len(req.Slots))
	for i, s := range req.Slots {
		slot := models.Slot{StartTime: s.StartTime, EndTime: s.EndTime}
		if err := models.ValidateSlot(slot); err != nil {
			writeFieldErrors(w, []FieldError{{
				Param: fmt.Sprintf("slots[%d]", i),
				Msg:   capitalize(err.Error()),
			}})
			return
		}
		slots = append(slots, slot)
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	therapist, err := findTherapistByUser(ctx, auth.UserID)
	if err != nil {
		writeMessage(w, http.StatusNotFound, false, "Therapist profile not found")
		return
	}
	if therapist.Status != models.ApplicationApproved {
		writeMessage(w, http.StatusForbidden, false, "Only approved therapists can publish a schedule")
		return
	}

	added, err := services.MergeSlots(ctx, therapist.ID, date, slots)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, false, "Failed to save schedule")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"message":     "Schedule saved",
		"slots_added": added,
	})
}

// GetMySchedule returns the authenticated therapist's upcoming schedule days.
func GetMySchedule(w http.ResponseWriter, r *http.Request) {
	auth, ok := middleware.AuthFrom(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, false, "Authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	therapist, err := findTherapistByUser(ctx, auth.UserID)
	if err != nil {
		writeMessage(w, http.StatusNotFound, false, "Therapist profile not found")
		return
	}

	today := time.Now().Truncate(24 * time.Hour)
	cursor, err := database.DB.Collection("schedules").Find(ctx,
		bson.M{"therapist_id": therapist.ID, "date": bson.M{"$gte": today}},
		options.Find().SetSort(bson.M{"date": 1}),
	)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, false, "Failed to fetch schedule")
		return
	}
	defer cursor.Close(ctx)

	var schedules []models.Schedule
	if err = cursor.All(ctx, &schedules); err != nil {
		writeMessage(w, http.StatusInternalServerError, false, "Failed to decode schedule")
		return
	}

	for i := range schedules {
		models.SortSlots(schedules[i].Slots)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"schedule": schedules,
	})
}
