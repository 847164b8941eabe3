package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/therapytreasure/backend/internal/database"
	"github.com/therapytreasure/backend/internal/middleware"
	"github.com/therapytreasure/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetMyProfile returns the authenticated therapist's own profile with the
// owner's name and resolved tag names.
func GetMyProfile(w http.ResponseWriter, r *http.Request) {
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

	views, err := loadTherapistViews(ctx, bson.M{"_id": therapist.ID})
	if err != nil || len(views) == 0 {
		writeMessage(w, http.StatusInternalServerError, false, "An error occurred")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"therapist": views[0],
	})
}

// UpdateMyProfile updates the therapist's own profile fields from a multipart
// form. File fields replace the stored documents when present; text fields
// are applied only when submitted.
func UpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	auth, ok := middleware.AuthFrom(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, false, "Authentication required")
		return
	}

	if err := r.ParseMultipartForm(20 << 20); err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid multipart form")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	therapist, err := findTherapistByUser(ctx, auth.UserID)
	if err != nil {
		writeMessage(w, http.StatusNotFound, false, "Therapist profile not found")
		return
	}

	userSet := bson.M{}
	if name := r.FormValue("name"); name != "" {
		userSet["name"] = name
	}
	if surname := r.FormValue("surname"); surname != "" {
		userSet["surname"] = surname
	}

	set := bson.M{"updated_at": time.Now()}
	if phone := r.FormValue("phone"); phone != "" {
		set["phone"] = phone
	}
	if title := r.FormValue("title"); title != "" {
		set["title"] = title
	}
	if licence := r.FormValue("licence_number"); licence != "" {
		set["licence_number"] = licence
	}
	if _, present := r.MultipartForm.Value["certificates"]; present {
		set["certificates"] = r.FormValue("certificates")
	}
	if _, present := r.MultipartForm.Value["about"]; present {
		set["about"] = r.FormValue("about")
	}
	if _, present := r.MultipartForm.Value["is_visible"]; present {
		set["is_visible"] = parseBool(r.FormValue("is_visible"))
	}
	if _, present := r.MultipartForm.Value["expertise_areas"]; present {
		set["expertise_areas"] = parseObjectIDList(r.FormValue("expertise_areas"))
	}
	if _, present := r.MultipartForm.Value["category_areas"]; present {
		set["category_areas"] = parseObjectIDList(r.FormValue("category_areas"))
	}

	if cloudinaryService != nil {
		uploads := []struct {
			field  string
			folder string
			key    string
		}{
			{"photo", "photos", "photo_url"},
			{"cv", "cv", "cv"},
			{"motivation_letter", "m_letter", "motivation_letter"},
			{"reference_letter", "r_letter", "reference_letter"},
		}
		for _, u := range uploads {
			header := formFile(r, u.field)
			if header == nil {
				continue
			}
			url, err := cloudinaryService.UploadFileFromHeader(ctx, header, u.folder)
			if err != nil {
				log.Printf("%s upload failed: %v", u.field, err)
				writeMessage(w, http.StatusInternalServerError, false, "Failed to upload file")
				return
			}
			set[u.key] = url
		}
	}

	if len(userSet) > 0 {
		userSet["updated_at"] = time.Now()
		if _, err = database.DB.Collection("users").UpdateOne(ctx,
			bson.M{"_id": therapist.UserID}, bson.M{"$set": userSet}); err != nil {
			writeMessage(w, http.StatusInternalServerError, false, "Failed to update profile")
			return
		}
	}

	if _, err = database.DB.Collection("therapists").UpdateOne(ctx,
		bson.M{"_id": therapist.ID}, bson.M{"$set": set}); err != nil {
		writeMessage(w, http.StatusInternalServerError, false, "Failed to update profile")
		return
	}

	writeMessage(w, http.StatusOK, true, "Profile updated successfully")
}

// TherapistBookings lists appointments booked with the authenticated
// therapist, newest appointment first, with each client's display name.
func TherapistBookings(w http.ResponseWriter, r *http.Request) {
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

	cursor, err := database.DB.Collection("bookings").Find(ctx,
		bson.M{"therapist_id": therapist.ID},
		options.Find().SetSort(bson.M{"appointment_date": -1}),
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

	clientIDs := make([]primitive.ObjectID, 0, len(bookings))
	for _, b := range bookings {
		clientIDs = append(clientIDs, b.UserID)
	}
	clients, err := usersByID(ctx, clientIDs)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, false, "Failed to fetch bookings")
		return
	}

	type bookingView struct {
		models.Booking
		ClientName    string `json:"client_name"`
		ClientSurname string `json:"client_surname"`
	}
	views := make([]bookingView, 0, len(bookings))
	for _, b := range bookings {
		v := bookingView{Booking: b}
		if client, ok := clients[b.UserID]; ok {
			v.ClientName = client.Name
			v.ClientSurname = client.Surname
		}
		views = append(views, v)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"bookings": views,
		"count":    len(views),
	})
}

// TherapistStatistics reports booking counts for the therapist dashboard.
func TherapistStatistics(w http.ResponseWriter, r *http.Request) {
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

	bookings := database.DB.Collection("bookings")
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	mine := bson.M{"therapist_id": therapist.ID}
	actorID, _ := primitive.ObjectIDFromHex(auth.UserID)

	counts := map[string]interface{}{}
	queries := []struct {
		key    string
		filter bson.M
	}{
		{"total_bookings", mine},
		{"upcoming_bookings", bson.M{
			"therapist_id":     therapist.ID,
			"status":           models.BookingApproved,
			"appointment_date": bson.M{"$gte": now},
		}},
		{"completed_bookings", bson.M{
			"therapist_id":     therapist.ID,
			"status":           models.BookingApproved,
			"appointment_date": bson.M{"$lt": now},
		}},
		{"cancelled_bookings", bson.M{
			"therapist_id": therapist.ID,
			"status":       models.BookingCancelled,
		}},
		{"bookings_this_month", bson.M{
			"therapist_id":     therapist.ID,
			"appointment_date": bson.M{"$gte": monthStart},
		}},
		{"cancelled_by_me", bson.M{
			"therapist_id": therapist.ID,
			"status":       models.BookingCancelled,
			"cancelled_by": actorID,
		}},
	}
	for _, q := range queries {
		n, err := bookings.CountDocuments(ctx, q.filter)
		if err != nil {
			writeMessage(w, http.StatusInternalServerError, false, "Failed to compute statistics")
			return
		}
		counts[q.key] = n
	}

	byMeetingType, err := countBookingsBy(ctx, "meeting_type", mine)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, false, "Failed to compute statistics")
		return
	}
	counts["by_meeting_type"] = byMeetingType

	byPlatform, err := countBookingsBy(ctx, "platform", mine)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, false, "Failed to compute statistics")
		return
	}
	counts["by_platform"] = byPlatform

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"statistics": counts,
	})
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "1", "on", "yes":
		return true
	}
	return false
}

// parseObjectIDList splits a comma-separated id list, skipping bad entries.
func parseObjectIDList(s string) []primitive.ObjectID {
	out := []primitive.ObjectID{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if id, err := primitive.ObjectIDFromHex(part); err == nil {
			out = append(out, id)
		}
	}
	return out
}
