package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCreateBookingValidation(t *testing.T) {
	valid := `{"therapist_id":"64f1c0ffee0000000000aaaa","date":"2026-09-15",` +
		`"start_time":"09:00","end_time":"10:00","meeting_type":"video",` +
		`"platform":"zoom","platform_details":"user@example.com"}`

	t.Run("complete request passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(valid))
		rec := httptest.NewRecorder()

		var dst CreateBookingRequest
		if !decodeAndValidate(rec, req, &dst) {
			t.Fatalf("expected valid request, body: %s", rec.Body.String())
		}
		if dst.EndTime != "10:00" {
			t.Fatalf("end_time = %q", dst.EndTime)
		}
	})

	// The slot is identified by its full (start, end) pair, so a booking
	// without the end time cannot name a slot and must be rejected.
	missing := []string{"therapist_id", "date", "start_time", "end_time", "platform_details"}
	for _, field := range missing {
		t.Run("missing "+field, func(t *testing.T) {
			body := strings.Replace(valid, `"`+field+`":`, `"x_`+field+`":`, 1)
			req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(body))
			rec := httptest.NewRecorder()

			var dst CreateBookingRequest
			if decodeAndValidate(rec, req, &dst) {
				t.Fatalf("expected validation failure without %s", field)
			}
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("got status %d", rec.Code)
			}
		})
	}

	t.Run("unknown meeting type", func(t *testing.T) {
		body := strings.Replace(valid, `"video"`, `"hologram"`, 1)
		req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(body))
		rec := httptest.NewRecorder()

		var dst CreateBookingRequest
		if decodeAndValidate(rec, req, &dst) {
			t.Fatal("expected validation failure for unknown meeting type")
		}
	})
}
