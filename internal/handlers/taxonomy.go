package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/therapytreasure/backend/internal/database"
	"github.com/therapytreasure/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TagRequest struct {
	Name string `json:"name" validate:"required"`
}

// ListExpertises returns every expertise tag, sorted by name.
func ListExpertises(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var tags []models.Expertise
	if !findTags(ctx, w, "expertises", &tags) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"tags":    tags,
		"count":   len(tags),
	})
}

// ListCategories returns every category tag, sorted by name.
func ListCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var tags []models.Category
	if !findTags(ctx, w, "categories", &tags) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"tags":    tags,
		"count":   len(tags),
	})
}

// findTags fetches a tag collection sorted by name into dst, writing the
// error response itself on failure.
func findTags(ctx context.Context, w http.ResponseWriter, collection string, dst interface{}) bool {
	cursor, err := database.DB.Collection(collection).Find(ctx, bson.M{},
		options.Find().SetSort(bson.M{"name": 1}))
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, false, "Error retrieving tags")
		return false
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, dst); err != nil {
		writeMessage(w, http.StatusInternalServerError, false, "Error retrieving tags")
		return false
	}
	return true
}

// CreateExpertise adds an expertise tag; duplicate names conflict.
func CreateExpertise(w http.ResponseWriter, r *http.Request) {
	var req TagRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	insertTag(w, r, "expertises", models.Expertise{Name: req.Name})
}

// CreateCategory adds a category tag; duplicate names conflict.
func CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req TagRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	insertTag(w, r, "categories", models.Category{Name: req.Name})
}

func insertTag(w http.ResponseWriter, r *http.Request, collection string, doc interface{}) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	_, err := database.DB.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			writeMessage(w, http.StatusConflict, false, "A tag with this name already exists")
			return
		}
		writeMessage(w, http.StatusInternalServerError, false, "Failed to create tag")
		return
	}

	writeMessage(w, http.StatusCreated, true, "Tag created successfully")
}

// UpdateExpertise renames an expertise tag; duplicate names conflict.
func UpdateExpertise(w http.ResponseWriter, r *http.Request) {
	updateTag(w, r, "expertises")
}

// UpdateCategory renames a category tag; duplicate names conflict.
func UpdateCategory(w http.ResponseWriter, r *http.Request) {
	updateTag(w, r, "categories")
}

func updateTag(w http.ResponseWriter, r *http.Request, collection string) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid tag ID")
		return
	}

	var req TagRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := database.DB.Collection(collection).UpdateOne(ctx,
		bson.M{"_id": id}, bson.M{"$set": bson.M{"name": req.Name}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			writeMessage(w, http.StatusConflict, false, "A tag with this name already exists")
			return
		}
		writeMessage(w, http.StatusInternalServerError, false, "Failed to update tag")
		return
	}
	if res.MatchedCount == 0 {
		writeMessage(w, http.StatusNotFound, false, "Tag not found")
		return
	}

	writeMessage(w, http.StatusOK, true, "Tag updated successfully")
}

// DeleteExpertise removes an expertise tag and strips it from therapist
// profiles that reference it.
func DeleteExpertise(w http.ResponseWriter, r *http.Request) {
	deleteTag(w, r, "expertises", "expertise_areas")
}

// DeleteCategory removes a category tag and strips it from therapist
// profiles that reference it.
func DeleteCategory(w http.ResponseWriter, r *http.Request) {
	deleteTag(w, r, "categories", "category_areas")
}

func deleteTag(w http.ResponseWriter, r *http.Request, collection, profileField string) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid tag ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := database.DB.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, false, "Failed to delete tag")
		return
	}
	if res.DeletedCount == 0 {
		writeMessage(w, http.StatusNotFound, false, "Tag not found")
		return
	}

	database.DB.Collection("therapists").UpdateMany(ctx,
		bson.M{profileField: id},
		bson.M{"$pull": bson.M{profileField: id}},
	)

	writeMessage(w, http.StatusOK, true, "Tag deleted successfully")
}
