package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/therapytreasure/backend/internal/database"
	"github.com/therapytreasure/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// therapistView is the public card for a therapist: the profile plus the
// owner's display name and resolved tag names.
type therapistView struct {
	Therapist  models.Therapist `json:"therapist"`
	Name       string           `json:"name"`
	Surname    string           `json:"surname"`
	Expertises []string         `json:"expertises"`
	Categories []string         `json:"categories"`
}

// ListTherapists returns approved, visible therapists for the public index.
func ListTherapists(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	views, err := loadTherapistViews(ctx, bson.M{
		"status":     models.ApplicationApproved,
		"is_visible": true,
	})
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, false, "Error retrieving therapists")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"therapists": views,
		"count":      len(views),
	})
}

// SearchTherapists filters the public listing by a case-insensitive match
// across owner name, title, about, certificates, education and tag names.
func SearchTherapists(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		ListTherapists(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	views, err := loadTherapistViews(ctx, bson.M{
		"status":     models.ApplicationApproved,
		"is_visible": true,
	})
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, false, "Error retrieving therapists")
		return
	}

	matched := make([]therapistView, 0, len(views))
	for _, v := range views {
		if matchesQuery(v, query) {
			matched = append(matched, v)
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"therapists": matched,
		"count":      len(matched),
	})
}

func matchesQuery(v therapistView, query string) bool {
	q := strings.ToLower(query)
	contains := func(s string) bool {
		return s != "" && strings.Contains(strings.ToLower(s), q)
	}

	if contains(v.Name) || contains(v.Surname) || contains(v.Therapist.Title) ||
		contains(v.Therapist.About) || contains(v.Therapist.Certificates) {
		return true
	}
	for _, edu := range v.Therapist.University {
		if contains(edu.UniName) || contains(edu.Degree) || contains(edu.Department) || contains(edu.GraduationYear) {
			return true
		}
	}
	for _, name := range v.Expertises {
		if contains(name) {
			return true
		}
	}
	for _, name := range v.Categories {
		if contains(name) {
			return true
		}
	}
	return false
}

// GetTherapist returns one therapist profile by id.
func GetTherapist(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid therapist ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	views, err := loadTherapistViews(ctx, bson.M{"_id": id})
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, false, "An error occurred")
		return
	}
	if len(views) == 0 {
		writeMessage(w, http.StatusNotFound, false, "No such therapist")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"therapist": views[0],
	})
}

// GetTherapistSchedule returns a therapist's upcoming schedule days so the
// booking page can render open slots.
func GetTherapistSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid therapist ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	today := time.Now().Truncate(24 * time.Hour)
	cursor, err := database.DB.Collection("schedules").Find(ctx,
		bson.M{"therapist_id": id, "date": bson.M{"$gte": today}},
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

// loadTherapistViews fetches therapists matching filter and resolves owner
// names and tag names in bulk.
func loadTherapistViews(ctx context.Context, filter bson.M) ([]therapistView, error) {
	cursor, err := database.DB.Collection("therapists").Find(ctx, filter,
		options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var therapists []models.Therapist
	if err = cursor.All(ctx, &therapists); err != nil {
		return nil, err
	}

	userIDs := make([]primitive.ObjectID, 0, len(therapists))
	var tagIDs []primitive.ObjectID
	for _, t := range therapists {
		userIDs = append(userIDs, t.UserID)
		tagIDs = append(tagIDs, t.ExpertiseAreas...)
		tagIDs = append(tagIDs, t.CategoryAreas...)
	}

	users, err := usersByID(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	expertiseNames, err := expertiseNamesByID(ctx, tagIDs)
	if err != nil {
		return nil, err
	}
	categoryNames, err := categoryNamesByID(ctx, tagIDs)
	if err != nil {
		return nil, err
	}

	views := make([]therapistView, 0, len(therapists))
	for _, t := range therapists {
		v := therapistView{Therapist: t}
		if owner, ok := users[t.UserID]; ok {
			v.Name = owner.Name
			v.Surname = owner.Surname
		}
		for _, id := range t.ExpertiseAreas {
			if name, ok := expertiseNames[id]; ok {
				v.Expertises = append(v.Expertises, name)
			}
		}
		for _, id := range t.CategoryAreas {
			if name, ok := categoryNames[id]; ok {
				v.Categories = append(v.Categories, name)
			}
		}
		views = append(views, v)
	}
	return views, nil
}

func usersByID(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	out := make(map[primitive.ObjectID]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	cursor, err := database.DB.Collection("users").Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func expertiseNamesByID(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	out := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	cursor, err := database.DB.Collection("expertises").Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tags []models.Expertise
	if err = cursor.All(ctx, &tags); err != nil {
		return nil, err
	}
	for _, tag := range tags {
		out[tag.ID] = tag.Name
	}
	return out, nil
}

func categoryNamesByID(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	out := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	cursor, err := database.DB.Collection("categories").Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tags []models.Category
	if err = cursor.All(ctx, &tags); err != nil {
		return nil, err
	}
	for _, tag := range tags {
		out[tag.ID] = tag.Name
	}
	return out, nil
}

// findTherapistByUser resolves the Therapist document owned by a user id.
func findTherapistByUser(ctx context.Context, userIDHex string) (*models.Therapist, error) {
	userID, err := primitive.ObjectIDFromHex(userIDHex)
	if err != nil {
		return nil, err
	}

	var therapist models.Therapist
	if err = database.DB.Collection("therapists").FindOne(ctx, bson.M{"user_id": userID}).Decode(&therapist); err != nil {
		return nil, err
	}
	return &therapist, nil
}
