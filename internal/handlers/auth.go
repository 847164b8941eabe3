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
)

type SignupRequest struct {
	Name            string `json:"name" validate:"required"`
	Surname         string `json:"surname" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	AgeCheck        bool   `json:"age_check" validate:"required"`
	TermsCheck      bool   `json:"terms_check" validate:"required"`
}

type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Signup registers an unverified user and emails a 1-hour verification link.
func Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	users := database.DB.Collection("users")

	err := users.FindOne(ctx, bson.M{"email": req.Email}).Err()
	if err == nil {
		writeFieldErrors(w, []FieldError{{Param: "email", Msg: "This email address is already in use."}})
		return
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		writeMessage(w, http.StatusInternalServerError, false, "Database error")
		return
	}

	token, err := utils.GenerateToken()
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, false, "Error signing up")
		return
	}
	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, false, "Error signing up")
		return
	}

	now := time.Now()
	expires := now.Add(models.TokenTTL)
	_, err = users.InsertOne(ctx, models.User{
		CreatedAt:                     now,
		UpdatedAt:                     now,
		Name:                          req.Name,
		Surname:                       req.Surname,
		Email:                         req.Email,
		Password:                      hashed,
		Role:                          models.RoleUser,
		EmailVerificationToken:        token,
		EmailVerificationTokenExpires: &expires,
	})
	if err != nil {
		// A concurrent signup can slip past the pre-check; the unique email
		// index catches it here.
		if mongo.IsDuplicateKeyError(err) {
			writeFieldErrors(w, []FieldError{{Param: "email", Msg: "This email address is already in use."}})
			return
		}
		writeMessage(w, http.StatusInternalServerError, false, "Error signing up")
		return
	}

	mailer.SendVerificationEmail(req.Email, token)

	writeMessage(w, http.StatusCreated, true, "Please check your email for verification.")
}

// VerifyEmail flips email_verified for a valid, unexpired token. Not-found
// and expired are reported as one combined failure.
func VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := database.DB.Collection("users").UpdateOne(ctx,
		bson.M{
			"email_verification_token":         token,
			"email_verification_token_expires": bson.M{"$gt": time.Now()},
		},
		bson.M{
			"$set": bson.M{"email_verified": true, "updated_at": time.Now()},
			"$unset": bson.M{
				"email_verification_token":         "",
				"email_verification_token_expires": "",
			},
		},
	)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, false, "An error occurred during email verification")
		return
	}
	if res.MatchedCount == 0 {
		writeMessage(w, http.StatusBadRequest, false, "Email verification token is invalid or has expired.")
		return
	}

	writeMessage(w, http.StatusOK, true, "Your email has been successfully verified. You can now log in.")
}

// Signin authenticates a verified user and opens a Redis-backed session.
func Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var user models.User
	err := database.DB.Collection("users").FindOne(ctx, bson.M{"email": req.Email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
				"success": false,
				"errors":  []FieldError{{Param: "email", Msg: "User not found"}},
			})
			return
		}
		writeMessage(w, http.StatusInternalServerError, false, "An error occurred")
		return
	}

	if !utils.VerifyPassword(req.Password, user.Password) {
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"success": false,
			"errors":  []FieldError{{Param: "password", Msg: "Incorrect password"}},
		})
		return
	}

	if !user.EmailVerified {
		writeMessage(w, http.StatusForbidden, false, "Email not verified. Please check your inbox for the verification link.")
		return
	}

	token, err := services.CreateSession(ctx, user.ID)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, false, "Failed to create session")
		return
	}

	setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Login successful",
		"user":    userResponse(&user),
		"token":   token,
	})
}

// Logout destroys the session and clears the cookie.
func Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(middleware.SessionCookieName); err == nil {
		services.InvalidateSession(r.Context(), c.Value)
	}
	clearSessionCookie(w)
	writeMessage(w, http.StatusOK, true, "Logged out")
}

// Me returns the authenticated user.
func Me(w http.ResponseWriter, r *http.Request) {
	auth, ok := middleware.AuthFrom(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, false, "Authentication required")
		return
	}

	user, err := loadUser(r.Context(), auth.UserID)
	if err != nil {
		writeMessage(w, http.StatusNotFound, false, "User not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    userResponse(user),
	})
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPassword issues a 1-hour reset token and emails the reset link.
func ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	token, err := utils.GenerateToken()
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, false, "An error occurred")
		return
	}

	expires := time.Now().Add(models.TokenTTL)
	res, err := database.DB.Collection("users").UpdateOne(ctx,
		bson.M{"email": req.Email},
		bson.M{"$set": bson.M{
			"reset_password_token":         token,
			"reset_password_token_expires": expires,
			"updated_at":                   time.Now(),
		}},
	)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, false, "An error occurred")
		return
	}
	if res.MatchedCount == 0 {
		writeMessage(w, http.StatusNotFound, false, "User not found")
		return
	}

	mailer.SendPasswordResetEmail(req.Email, token)

	writeMessage(w, http.StatusOK, true, "A password reset link has been sent to your email.")
}

// CheckResetToken verifies a reset token before the frontend shows the form.
func CheckResetToken(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	err := database.DB.Collection("users").FindOne(ctx, bson.M{
		"reset_password_token":         token,
		"reset_password_token_expires": bson.M{"$gt": time.Now()},
	}).Err()
	if err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Password reset token is invalid or has expired.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"token":   token,
	})
}

type ResetPasswordRequest struct {
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// ResetPassword sets a new password for a valid token, rejecting reuse of
// the current password, and invalidates any open session.
func ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var req ResetPasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var user models.User
	err := database.DB.Collection("users").FindOne(ctx, bson.M{
		"reset_password_token":         token,
		"reset_password_token_expires": bson.M{"$gt": time.Now()},
	}).Decode(&user)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Password reset token is invalid or has expired.")
		return
	}

	if utils.VerifyPassword(req.Password, user.Password) {
		writeMessage(w, http.StatusBadRequest, false, "New password cannot be the same as the old one.")
		return
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, false, "An error occurred during the password reset process.")
		return
	}

	_, err = database.DB.Collection("users").UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{
			"$set": bson.M{"password": hashed, "updated_at": time.Now()},
			"$unset": bson.M{
				"reset_password_token":         "",
				"reset_password_token_expires": "",
			},
		},
	)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, false, "An error occurred during the password reset process.")
		return
	}

	services.InvalidateUserSessions(ctx, user.ID)

	writeMessage(w, http.StatusOK, true, "Your password has been successfully reset. You can now log in with your new password.")
}

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(services.SessionDuration.Seconds()),
		HttpOnly: true,
		Secure:   cfg != nil && cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

func loadUser(ctx context.Context, idHex string) (*models.User, error) {
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, err
	}

	lctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var user models.User
	if err := database.DB.Collection("users").FindOne(lctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func userResponse(u *models.User) map[string]interface{} {
	return map[string]interface{}{
		"id":             u.ID.Hex(),
		"name":           u.Name,
		"surname":        u.Surname,
		"email":          u.Email,
		"role":           u.Role,
		"email_verified": u.EmailVerified,
		"created_at":     u.CreatedAt,
	}
}
