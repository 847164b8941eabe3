package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/therapytreasure/backend/internal/database"
	"github.com/therapytreasure/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/therapytreasure/backend/pkg/utils"
)

const maxUniversities = 10

// Apply handles a therapist application: multipart form with the applicant's
// user fields, professional details, education entries and PDF documents.
// A paired User (role Therapist) and a pending Therapist profile are created
// together; sign-in stays blocked until an admin approves.
func Apply(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(20 << 20); err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid multipart form")
		return
	}

	name := r.FormValue("name")
	surname := r.FormValue("surname")
	email := r.FormValue("email")
	password := r.FormValue("password")
	confirmPassword := r.FormValue("confirm_password")
	phone := r.FormValue("phone")
	title := r.FormValue("title")
	licenceNumber := r.FormValue("licence_number")

	var errs []FieldError
	requireField := func(param, value, msg string) {
		if strings.TrimSpace(value) == "" {
			errs = append(errs, FieldError{Param: param, Msg: msg})
		}
	}
	requireField("name", name, "Please enter your name")
	requireField("surname", surname, "Please enter your surname")
	requireField("email", email, "Please enter your email address")
	requireField("password", password, "Please enter your password")
	requireField("phone", phone, "Please enter your phone number")
	requireField("title", title, "Please enter your title")
	requireField("licence_number", licenceNumber, "Please enter your licence number")

	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			errs = append(errs, FieldError{Param: "email", Msg: "Please enter a valid email address"})
		}
	}
	if password != "" && len(password) < 6 {
		errs = append(errs, FieldError{Param: "password", Msg: "Password must be at least 6 characters"})
	}
	if confirmPassword != password {
		errs = append(errs, FieldError{Param: "confirm_password", Msg: "Passwords do not match"})
	}

	cvHeader := formFile(r, "cv")
	if cvHeader == nil {
		errs = append(errs, FieldError{Param: "cv", Msg: "Please attach your cv"})
	} else if !isPDF(cvHeader) {
		errs = append(errs, FieldError{Param: "cv", Msg: "Please upload your cv in PDF format"})
	}
	motivationHeader := formFile(r, "motivation_letter")
	if motivationHeader != nil && !isPDF(motivationHeader) {
		errs = append(errs, FieldError{Param: "motivation_letter", Msg: "Please upload your motivation letter in PDF format"})
	}
	referenceHeader := formFile(r, "reference_letter")
	if referenceHeader != nil && !isPDF(referenceHeader) {
		errs = append(errs, FieldError{Param: "reference_letter", Msg: "Please upload your reference letter in PDF format"})
	}

	universities := parseUniversities(r)
	if len(universities) == 0 {
		errs = append(errs, FieldError{Param: "university", Msg: "Please enter at least one education entry"})
	}

	if len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	users := database.DB.Collection("users")

	err := users.FindOne(ctx, bson.M{"email": email}).Err()
	if err == nil {
		writeMessage(w, http.StatusConflict, false, "E-mail address already exists")
		return
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		writeMessage(w, http.StatusInternalServerError, false, "Database error")
		return
	}

	if cloudinaryService == nil {
		writeMessage(w, http.StatusInternalServerError, false, "File upload service not available")
		return
	}

	cvURL, err := uploadDocument(ctx, cvHeader, "cv")
	if err != nil {
		log.Printf("cv upload failed: %v", err)
		writeMessage(w, http.StatusInternalServerError, false, "Failed to upload cv")
		return
	}
	motivationURL, err := uploadDocument(ctx, motivationHeader, "m_letter")
	if err != nil {
		log.Printf("motivation letter upload failed: %v", err)
		writeMessage(w, http.StatusInternalServerError, false, "Failed to upload motivation letter")
		return
	}
	referenceURL, err := uploadDocument(ctx, referenceHeader, "r_letter")
	if err != nil {
		log.Printf("reference letter upload failed: %v", err)
		writeMessage(w, http.StatusInternalServerError, false, "Failed to upload reference letter")
		return
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, false, "Error submitting application")
		return
	}

	now := time.Now()
	userRes, err := users.InsertOne(ctx, models.User{
		CreatedAt: now,
		UpdatedAt: now,
		Name:      name,
		Surname:   surname,
		Email:     email,
		Password:  hashed,
		Role:      models.RoleTherapist,
	})
	if err != nil {
		// A concurrent signup can slip past the pre-check; the unique email
		// index catches it here.
		if mongo.IsDuplicateKeyError(err) {
			writeMessage(w, http.StatusConflict, false, "E-mail address already exists")
			return
		}
		writeMessage(w, http.StatusInternalServerError, false, "Error submitting application")
		return
	}

	therapist := models.Therapist{
		CreatedAt:     now,
		UpdatedAt:     now,
		UserID:        userRes.InsertedID.(primitive.ObjectID),
		Phone:         phone,
		Title:         title,
		LicenceNumber: licenceNumber,
		University:    universities,

		CV:               cvURL,
		MotivationLetter: motivationURL,
		ReferenceLetter:  referenceURL,

		ExpertiseAreas: []primitive.ObjectID{},
		CategoryAreas:  []primitive.ObjectID{},

		Status:    models.ApplicationPending,
		IsVisible: false,
	}
	if _, err = database.DB.Collection("therapists").InsertOne(ctx, therapist); err != nil {
		// Roll the paired user back so a retry is not blocked on the email.
		users.DeleteOne(ctx, bson.M{"_id": userRes.InsertedID})
		writeMessage(w, http.StatusInternalServerError, false, "Error submitting application")
		return
	}

	mailer.SendApplicationReceived(email)

	writeMessage(w, http.StatusCreated, true, "Your application has been successfully completed.")
}

func parseUniversities(r *http.Request) []models.University {
	count, _ := strconv.Atoi(r.FormValue("university_count"))
	if count > maxUniversities {
		count = maxUniversities
	}

	var out []models.University
	for i := 0; i < count; i++ {
		prefix := fmt.Sprintf("university[%d].", i)
		entry := models.University{
			UniName:        r.FormValue(prefix + "uni_name"),
			Degree:         r.FormValue(prefix + "degree"),
			Department:     r.FormValue(prefix + "department"),
			GraduationYear: r.FormValue(prefix + "graduation_year"),
		}
		if entry.UniName != "" && entry.Degree != "" && entry.Department != "" && entry.GraduationYear != "" {
			out = append(out, entry)
		}
	}
	return out
}

func formFile(r *http.Request, field string) *multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	headers := r.MultipartForm.File[field]
	if len(headers) == 0 {
		return nil
	}
	return headers[0]
}

func isPDF(header *multipart.FileHeader) bool {
	return strings.Contains(header.Header.Get("Content-Type"), "pdf")
}

// uploadDocument sends an optional file header to Cloudinary. A nil header
// is not an error; it returns an empty URL.
func uploadDocument(ctx context.Context, header *multipart.FileHeader, folder string) (string, error) {
	if header == nil {
		return "", nil
	}
	return cloudinaryService.UploadFileFromHeader(ctx, header, folder)
}
