package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/therapytreasure/backend/internal/database"
	"github.com/therapytreasure/backend/internal/middleware"
	"github.com/therapytreasure/backend/internal/models"
	"github.com/therapytreasure/backend/internal/services"
	"github.com/therapytreasure/backend/pkg/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListApplications returns therapist applications for admin review, optionally
// filtered by ?status=pending|approved|rejected.
func ListApplications(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		s := models.ApplicationStatus(status)
		if !s.Valid() {
			writeMessage(w, http.StatusBadRequest, false, "Invalid status filter")
			return
		}
		filter["status"] = s
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	views, err := loadTherapistViews(ctx, filter)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, false, "Error retrieving applications")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"applications": views,
		"count":        len(views),
	})
}

// ApproveApplication approves a pending therapist application, marks the
// owner's email verified so they can sign in, and emails the decision.
func ApproveApplication(w http.ResponseWriter, r *http.Request) {
	decideApplication(w, r, models.ApplicationApproved)
}

// RejectApplication rejects a pending therapist application and emails the
// decision. The owner's email stays unverified, so the account cannot be
// used to sign in.
func RejectApplication(w http.ResponseWriter, r *http.Request) {
	decideApplication(w, r, models.ApplicationRejected)
}

func decideApplication(w http.ResponseWriter, r *http.Request, decision models.ApplicationStatus) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid application ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var therapist models.Therapist
	err = database.DB.Collection("therapists").FindOne(ctx, bson.M{"_id": id}).Decode(&therapist)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			writeMessage(w, http.StatusNotFound, false, "Application not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, false, "An error occurred")
		return
	}

	if !therapist.Status.CanTransition(decision) {
		writeMessage(w, http.StatusConflict, false, "Application has already been decided")
		return
	}

	// Guard the update on the current status so two admins deciding at once
	// cannot both win.
	set := bson.M{"status": decision, "updated_at": time.Now()}
	if decision == models.ApplicationApproved {
		set["is_visible"] = true
	}
	res, err := database.DB.Collection("therapists").UpdateOne(ctx,
		bson.M{"_id": id, "status": models.ApplicationPending},
		bson.M{"$set": set},
	)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, false, "Failed to update application")
		return
	}
	if res.ModifiedCount == 0 {
		writeMessage(w, http.StatusConflict, false, "Application has already been decided")
		return
	}

	var owner models.User
	if err = database.DB.Collection("users").FindOne(ctx, bson.M{"_id": therapist.UserID}).Decode(&owner); err == nil {
		if decision == models.ApplicationApproved {
			database.DB.Collection("users").UpdateOne(ctx,
				bson.M{"_id": owner.ID},
				bson.M{"$set": bson.M{"email_verified": true, "updated_at": time.Now()}},
			)
			mailer.SendApplicationApproved(owner.Email)
		} else {
			mailer.SendApplicationRejected(owner.Email)
		}
	}

	if decision == models.ApplicationApproved {
		writeMessage(w, http.StatusOK, true, "Application approved")
		return
	}
	writeMessage(w, http.StatusOK, true, "Application rejected")
}

// ListUsers returns verified accounts with role user.
func ListUsers(w http.ResponseWriter, r *http.Request) {
	listAccounts(w, r, bson.M{"role": models.RoleUser, "email_verified": true}, "users")
}

// ListAdmins returns all accounts with role admin.
func ListAdmins(w http.ResponseWriter, r *http.Request) {
	listAccounts(w, r, bson.M{"role": models.RoleAdmin}, "admins")
}

func listAccounts(w http.ResponseWriter, r *http.Request, filter bson.M, key string) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := database.DB.Collection("users").Find(ctx, filter,
		options.Find().SetSort(bson.M{"created_at": -1}),
	)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, false, "Error retrieving accounts")
		return
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		writeMessage(w, http.StatusInternalServerError, false, "Error retrieving accounts")
		return
	}

	out := make([]map[string]interface{}, 0, len(users))
	for i := range users {
		out = append(out, userResponse(&users[i]))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		key:       out,
		"count":   len(out),
	})
}

// GetUser returns one account by id.
func GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid user ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	if err = database.DB.Collection("users").FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		writeMessage(w, http.StatusNotFound, false, "User not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    userResponse(&user),
	})
}

type UpdateUserRequest struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Email   string `json:"email" validate:"omitempty,email"`
}

// UpdateUser edits an account's basic fields.
func UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid user ID")
		return
	}

	var req UpdateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	set := bson.M{"updated_at": time.Now()}
	if req.Name != "" {
		set["name"] = req.Name
	}
	if req.Surname != "" {
		set["surname"] = req.Surname
	}
	if req.Email != "" {
		set["email"] = req.Email
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := database.DB.Collection("users").UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			writeFieldErrors(w, []FieldError{{Param: "email", Msg: "This email address is already in use."}})
			return
		}
		writeMessage(w, http.StatusInternalServerError, false, "Failed to update user")
		return
	}
	if res.MatchedCount == 0 {
		writeMessage(w, http.StatusNotFound, false, "User not found")
		return
	}

	writeMessage(w, http.StatusOK, true, "User updated successfully")
}

// DeleteUser removes an account and its sessions. Deleting an admin goes
// through DeleteAdmin, which enforces the last-admin rule.
func DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid user ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var user models.User
	if err = database.DB.Collection("users").FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		writeMessage(w, http.StatusNotFound, false, "User not found")
		return
	}
	if user.Role == models.RoleAdmin {
		writeMessage(w, http.StatusForbidden, false, "Admins must be removed through admin management")
		return
	}

	if _, err = database.DB.Collection("users").DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		writeMessage(w, http.StatusInternalServerError, false, "Failed to delete user")
		return
	}
	if user.Role == models.RoleTherapist {
		database.DB.Collection("therapists").DeleteOne(ctx, bson.M{"user_id": id})
	}
	services.InvalidateUserSessions(ctx, id)

	writeMessage(w, http.StatusOK, true, "User deleted successfully")
}

type CreateAdminRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// CreateAdmin promotes an existing user to admin by email. The promoted
// account is marked verified so it can sign in right away.
func CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req CreateAdminRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var user models.User
	err := database.DB.Collection("users").FindOne(ctx, bson.M{"email": req.Email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			writeMessage(w, http.StatusNotFound, false, "User not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, false, "Failed to promote admin")
		return
	}
	if user.Role == models.RoleAdmin {
		writeMessage(w, http.StatusConflict, false, "User is already an admin")
		return
	}

	_, err = database.DB.Collection("users").UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{
			"role":           models.RoleAdmin,
			"email_verified": true,
			"updated_at":     time.Now(),
		}},
	)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, false, "Failed to promote admin")
		return
	}

	writeMessage(w, http.StatusCreated, true, "Admin created successfully")
}

type UpdateAdminRequest struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"omitempty,min=6"`
}

// UpdateAdmin lets an admin edit their own account. Editing another admin's
// account is not allowed, and the new password must differ from the old one.
func UpdateAdmin(w http.ResponseWriter, r *http.Request) {
	auth, ok := middleware.AuthFrom(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, false, "Authentication required")
		return
	}

	idHex := chi.URLParam(r, "id")
	if idHex != auth.UserID {
		writeMessage(w, http.StatusForbidden, false, "Admins can only edit their own account")
		return
	}
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid admin ID")
		return
	}

	var req UpdateAdminRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var admin models.User
	if err = database.DB.Collection("users").FindOne(ctx, bson.M{"_id": id, "role": models.RoleAdmin}).Decode(&admin); err != nil {
		writeMessage(w, http.StatusNotFound, false, "Admin not found")
		return
	}

	set := bson.M{"updated_at": time.Now()}
	if req.Name != "" {
		set["name"] = req.Name
	}
	if req.Surname != "" {
		set["surname"] = req.Surname
	}
	if req.Email != "" {
		set["email"] = req.Email
	}
	if req.Password != "" {
		if utils.VerifyPassword(req.Password, admin.Password) {
			writeMessage(w, http.StatusBadRequest, false, "New password cannot be the same as the old one.")
			return
		}
		hashed, err := utils.HashPassword(req.Password)
		if err != nil {
			writeMessage(w, http.StatusInternalServerError, false, "Failed to update admin")
			return
		}
		set["password"] = hashed
	}

	if _, err = database.DB.Collection("users").UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set}); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			writeFieldErrors(w, []FieldError{{Param: "email", Msg: "This email address is already in use."}})
			return
		}
		writeMessage(w, http.StatusInternalServerError, false, "Failed to update admin")
		return
	}

	writeMessage(w, http.StatusOK, true, "Admin updated successfully")
}

// DeleteAdmin removes an admin account. The platform always keeps at least
// one admin, so deleting the last one is refused.
func DeleteAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid admin ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	count, err := database.DB.Collection("users").CountDocuments(ctx, bson.M{"role": models.RoleAdmin})
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, false, "Failed to delete admin")
		return
	}
	if count <= 1 {
		writeMessage(w, http.StatusForbidden, false, "Cannot delete the last admin account")
		return
	}

	res, err := database.DB.Collection("users").DeleteOne(ctx, bson.M{"_id": id, "role": models.RoleAdmin})
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, false, "Failed to delete admin")
		return
	}
	if res.DeletedCount == 0 {
		writeMessage(w, http.StatusNotFound, false, "Admin not found")
		return
	}
	services.InvalidateUserSessions(ctx, id)

	writeMessage(w, http.StatusOK, true, "Admin deleted successfully")
}

// ListAllBookings returns every booking for admin oversight, newest
// appointment first, with client names resolved.
func ListAllBookings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := database.DB.Collection("bookings").Find(ctx, bson.M{},
		options.Find().SetSort(bson.M{"appointment_date": -1}))
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

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// AdminStatistics reports platform-wide counts for the admin dashboard:
// account and application totals plus booking breakdowns by status, meeting
// type and platform.
func AdminStatistics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	now := time.Now()
	counts := map[string]interface{}{}
	queries := []struct {
		key        string
		collection string
		filter     bson.M
	}{
		{"total_users", "users", bson.M{"role": models.RoleUser, "email_verified": true}},
		{"total_therapists", "therapists", bson.M{"status": models.ApplicationApproved}},
		{"pending_applications", "therapists", bson.M{"status": models.ApplicationPending}},
		{"total_bookings", "bookings", bson.M{}},
		{"completed_bookings", "bookings", bson.M{
			"status":           models.BookingApproved,
			"appointment_date": bson.M{"$lt": now},
		}},
		{"upcoming_bookings", "bookings", bson.M{
			"status":           models.BookingApproved,
			"appointment_date": bson.M{"$gte": now},
		}},
		{"cancelled_bookings", "bookings", bson.M{"status": models.BookingCancelled}},
	}
	for _, q := range queries {
		n, err := database.DB.Collection(q.collection).CountDocuments(ctx, q.filter)
		if err != nil {
			writeMessage(w, http.StatusInternalServerError, false, "Failed to compute statistics")
			return
		}
		counts[q.key] = n
	}

	byMeetingType, err := countBookingsBy(ctx, "meeting_type", bson.M{})
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, false, "Failed to compute statistics")
		return
	}
	counts["by_meeting_type"] = byMeetingType

	byPlatform, err := countBookingsBy(ctx, "platform", bson.M{})
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

// countBookingsBy groups bookings matching filter by a field and returns the
// count per value.
func countBookingsBy(ctx context.Context, field string, filter bson.M) (map[string]int64, error) {
	cursor, err := database.DB.Collection("bookings").Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$match", Value: filter}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   "$" + field,
			"count": bson.M{"$sum": 1},
		}}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID    string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.ID] = row.Count
	}
	return out, nil
}
