package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/therapytreasure/backend/internal/database"
	"github.com/therapytreasure/backend/pkg/clientip"
)

type ContactRequest struct {
	Name    string `json:"name" validate:"required"`
	Surname string `json:"surname" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone"`
	Message string `json:"message" validate:"required"`
}

// Contact archives a contact-form submission and relays it to the platform
// inbox by email.
func Contact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	_, err := database.PostgresDB.ExecContext(ctx,
		`INSERT INTO contact_messages (id, name, surname, email, phone, message, ip_address)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.New().String(), req.Name, req.Surname, req.Email, req.Phone, req.Message,
		clientip.RealClientIP(r),
	)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, false, "Failed to send message")
		return
	}

	mailer.SendContactMessage(req.Name, req.Surname, req.Email, req.Phone, req.Message)

	writeMessage(w, http.StatusOK, true, "Your message has been sent. Thank you for contacting us!")
}

type contactMessage struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `json:"name"`
	Surname   string    `json:"surname"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Message   string    `json:"message"`
}

// ListContactMessages returns archived contact messages, newest first.
func ListContactMessages(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	rows, err := database.PostgresDB.QueryContext(ctx,
		`SELECT id, created_at, name, surname, email, COALESCE(phone, ''), message
		 FROM contact_messages ORDER BY created_at DESC LIMIT 200`)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, false, "Failed to fetch messages")
		return
	}
	defer rows.Close()

	messages := make([]contactMessage, 0)
	for rows.Next() {
		var m contactMessage
		if err := rows.Scan(&m.ID, &m.CreatedAt, &m.Name, &m.Surname, &m.Email, &m.Phone, &m.Message); err != nil {
			writeMessage(w, http.StatusInternalServerError, false, "Failed to fetch messages")
			return
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		writeMessage(w, http.StatusInternalServerError, false, "Failed to fetch messages")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"messages": messages,
		"count":    len(messages),
	})
}

// DeleteContactMessage removes one archived contact message.
func DeleteContactMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid message ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := database.PostgresDB.ExecContext(ctx,
		`DELETE FROM contact_messages WHERE id = $1`, id)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, false, "Failed to delete message")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeMessage(w, http.StatusNotFound, false, "Message not found")
		return
	}

	writeMessage(w, http.StatusOK, true, "Message deleted successfully")
}
