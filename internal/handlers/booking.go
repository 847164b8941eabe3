package handlers

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/therapytreasure/backend/internal/database"
	"github.com/therapytreasure/backend/internal/middleware"
	"github.com/therapytreasure/backend/internal/models"
	"github.com/therapytreasure/backend/internal/services"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CreateBookingRequest struct {
	TherapistID     string `json:"therapist_id" validate:"required"`
	Date            string `json:"date" validate:"required"`
	StartTime       string `json:"start_time" validate:"required"`
	EndTime         string `json:"end_time" validate:"required"`
	MeetingType     string `json:"meeting_type" validate:"required,oneof=text voice video"`
	Platform        string `json:"platform" validate:"required,oneof=zoom skype whatsapp"`
	PlatformDetails string `json:"platform_details" validate:"required"`
}

// CreateBooking books an appointment on a free schedule slot. The slot is
// reserved atomically, so two clients racing for the same slot get exactly
// one booking and one conflict.
func CreateBooking(w http.ResponseWriter, r *http.Request) {
	auth, ok := middleware.AuthFrom(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, false, "Authentication required")
		return
	}

	var req CreateBookingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	therapistID, err := primitive.ObjectIDFromHex(req.TherapistID)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid therapist ID")
		return
	}
	date, err := models.ParseScheduleDate(req.Date)
	if err != nil {
		writeFieldErrors(w, []FieldError{{Param: "date", Msg: "Date must be in YYYY-MM-DD format"}})
		return
	}

	userID, err := primitive.ObjectIDFromHex(auth.UserID)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, false, "Authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var therapist models.Therapist
	err = database.DB.Collection("therapists").FindOne(ctx, bson.M{
		"_id":    therapistID,
		"status": models.ApplicationApproved,
	}).Decode(&therapist)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			writeMessage(w, http.StatusNotFound, false, "No such therapist")
			return
		}
		writeMessage(w, http.StatusInternalServerError, false, "An error occurred")
		return
	}

	slot, err := services.ReserveSlot(ctx, therapistID, date, req.StartTime, req.EndTime)
	if err != nil {
		if errors.Is(err, services.ErrSlotUnavailable) {
			writeMessage(w, http.StatusConflict, false, "This slot is no longer available. Please choose another time.")
			return
		}
		writeMessage(w, http.StatusInternalServerError, false, "Failed to book appointment")
		return
	}

	now := time.Now()
	booking := models.Booking{
		CreatedAt:       now,
		UpdatedAt:       now,
		UserID:          userID,
		TherapistID:     therapistID,
		MeetingType:     models.MeetingType(req.MeetingType),
		Platform:        models.Platform(req.Platform),
		PlatformDetails: req.PlatformDetails,
		AppointmentDate: date,
		SlotStart:       slot.StartTime,
		SlotEnd:         slot.EndTime,
		Status:          models.BookingApproved,
	}
	res, err := database.DB.Collection("bookings").InsertOne(ctx, booking)
	if err != nil {
		// Free the slot again so the failed insert does not strand it.
		services.ReleaseSlot(ctx, therapistID, date, slot.StartTime, slot.EndTime)
		writeMessage(w, http.StatusInternalServerError, false, "Failed to book appointment")
		return
	}
	booking.ID = res.InsertedID.(primitive.ObjectID)

	sendBookingEmails(ctx, &booking, &therapist)

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Your appointment has been booked successfully.",
		"booking": booking,
	})
}

func sendBookingEmails(ctx context.Context, booking *models.Booking, therapist *models.Therapist) {
	users, err := usersByID(ctx, []primitive.ObjectID{booking.UserID, therapist.UserID})
	if err != nil {
		return
	}
	client, haveClient := users[booking.UserID]
	owner, haveOwner := users[therapist.UserID]
	if !haveClient || !haveOwner {
		return
	}

	email := services.BookingEmail{
		Date:            booking.AppointmentDate.Format("2006-01-02"),
		Time:            booking.SlotStart + " - " + booking.SlotEnd,
		UserName:        client.FullName(),
		TherapistName:   owner.FullName(),
		MeetingType:     string(booking.MeetingType),
		Platform:        string(booking.Platform),
		PlatformDetails: booking.PlatformDetails,
	}
	mailer.SendBookingConfirmation(client.Email, email)
	mailer.SendBookingNotification(owner.Email, email)
}

// ListMyBookings returns the authenticated user's appointments split into
// upcoming and past.
func ListMyBookings(w http.ResponseWriter, r *http.Request) {
	auth, ok := middleware.AuthFrom(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, false, "Authentication required")
		return
	}
	userID, err := primitive.ObjectIDFromHex(auth.UserID)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, false, "Authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := database.DB.Collection("bookings").Find(ctx,
		bson.M{"user_id": userID},
		options.Find().SetSort(bson.M{"appointment_date": 1}),
	)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, false, "Failed to fetch bookings")
		return
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		writeMessage(w, http.StatusInternalServerError, false, "Failed to decode bookings")
		return
	}

	today := time.Now().Truncate(24 * time.Hour)
	upcoming := make([]models.Booking, 0)
	past := make([]models.Booking, 0)
	for _, b := range bookings {
		if b.AppointmentDate.Before(today) {
			past = append(past, b)
		} else {
			upcoming = append(upcoming, b)
		}
	}
	// Past appointments read newest first.
	sort.Slice(past, func(i, j int) bool {
		return past[i].AppointmentDate.After(past[j].AppointmentDate)
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"upcoming": upcoming,
		"past":     past,
	})
}

// CancelBooking cancels an appointment and releases its schedule slot. The
// booking owner, the booked therapist and admins may cancel; cancelling an
// already cancelled booking is a no-op.
func CancelBooking(w http.ResponseWriter, r *http.Request) {
	auth, ok := middleware.AuthFrom(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, false, "Authentication required")
		return
	}

	booking, status, msg := loadBookingForActor(r, auth)
	if booking == nil {
		writeMessage(w, status, false, msg)
		return
	}

	if booking.Status == models.BookingCancelled {
		writeMessage(w, http.StatusOK, true, "Booking is already cancelled")
		return
	}
	if !booking.Status.CanTransition(models.BookingCancelled) {
		writeMessage(w, http.StatusConflict, false, "Booking cannot be cancelled")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	actorID, _ := primitive.ObjectIDFromHex(auth.UserID)
	res, err := database.DB.Collection("bookings").UpdateOne(ctx,
		bson.M{"_id": booking.ID, "status": models.BookingApproved},
		bson.M{"$set": bson.M{
			"status":       models.BookingCancelled,
			"cancelled_by": actorID,
			"updated_at":   time.Now(),
		}},
	)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, false, "Failed to cancel booking")
		return
	}
	if res.ModifiedCount == 0 {
		writeMessage(w, http.StatusOK, true, "Booking is already cancelled")
		return
	}

	if err = services.ReleaseSlot(ctx, booking.TherapistID, booking.AppointmentDate, booking.SlotStart, booking.SlotEnd); err != nil {
		writeMessage(w, http.StatusInternalServerError, false, "Booking cancelled but slot release failed")
		return
	}

	writeMessage(w, http.StatusOK, true, "Your appointment has been cancelled.")
}

// ReinstateBooking re-approves a cancelled appointment by reserving its slot
// again. Only the booked therapist or an admin may reinstate; fails with a
// conflict when someone else took the slot meanwhile.
func ReinstateBooking(w http.ResponseWriter, r *http.Request) {
	auth, ok := middleware.AuthFrom(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, false, "Authentication required")
		return
	}
	if !auth.IsTherapist() && !auth.IsAdmin() {
		writeMessage(w, http.StatusForbidden, false, "Access denied")
		return
	}

	booking, status, msg := loadBookingForActor(r, auth)
	if booking == nil {
		writeMessage(w, status, false, msg)
		return
	}

	if !booking.Status.CanTransition(models.BookingApproved) {
		writeMessage(w, http.StatusConflict, false, "Booking is not cancelled")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if _, err := services.ReserveSlot(ctx, booking.TherapistID, booking.AppointmentDate, booking.SlotStart, booking.SlotEnd); err != nil {
		if errors.Is(err, services.ErrSlotUnavailable) {
			writeMessage(w, http.StatusConflict, false, "This slot has been taken in the meantime.")
			return
		}
		writeMessage(w, http.StatusInternalServerError, false, "Failed to reinstate booking")
		return
	}

	// Guard the update on the cancelled status so a concurrent reinstate
	// cannot win twice; the loser gives its reservation back.
	res, err := database.DB.Collection("bookings").UpdateOne(ctx,
		bson.M{"_id": booking.ID, "status": models.BookingCancelled},
		bson.M{
			"$set":   bson.M{"status": models.BookingApproved, "updated_at": time.Now()},
			"$unset": bson.M{"cancelled_by": ""},
		},
	)
	if err != nil {
		services.ReleaseSlot(ctx, booking.TherapistID, booking.AppointmentDate, booking.SlotStart, booking.SlotEnd)
		writeMessage(w, http.StatusInternalServerError, false, "Failed to reinstate booking")
		return
	}
	if res.ModifiedCount == 0 {
		services.ReleaseSlot(ctx, booking.TherapistID, booking.AppointmentDate, booking.SlotStart, booking.SlotEnd)
		writeMessage(w, http.StatusConflict, false, "Booking is not cancelled")
		return
	}

	writeMessage(w, http.StatusOK, true, "Your appointment has been reinstated.")
}

// loadBookingForActor fetches the booking in the URL and checks that the
// actor may manage it: the booking owner, the booked therapist or an admin.
// On failure the booking is nil and status/msg describe the response.
func loadBookingForActor(r *http.Request, auth *middleware.Auth) (*models.Booking, int, string) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return nil, http.StatusBadRequest, "Invalid booking ID"
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var booking models.Booking
	err = database.DB.Collection("bookings").FindOne(ctx, bson.M{"_id": id}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, http.StatusNotFound, "Booking not found"
		}
		return nil, http.StatusInternalServerError, "An error occurred"
	}

	if auth.IsAdmin() {
		return &booking, 0, ""
	}
	actorID, err := primitive.ObjectIDFromHex(auth.UserID)
	if err != nil {
		return nil, http.StatusUnauthorized, "Authentication required"
	}
	if booking.UserID == actorID {
		return &booking, 0, ""
	}
	if auth.IsTherapist() {
		therapist, err := findTherapistByUser(ctx, auth.UserID)
		if err == nil && therapist.ID == booking.TherapistID {
			return &booking, 0, ""
		}
	}
	return nil, http.StatusForbidden, "You are not allowed to manage this booking"
}
