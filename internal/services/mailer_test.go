package services

import (
	"strings"
	"testing"
)

func TestVerificationEmailBody(t *testing.T) {
	body := verificationEmailBody("https://app.example.com", "tok123")

	if !strings.Contains(body, "https://app.example.com/verify-email/tok123") {
		t.Fatal("verification link missing from body")
	}
	if !strings.Contains(body, "expire in 1 hour") {
		t.Fatal("expiry notice missing from body")
	}
}

func TestPasswordResetEmailBody(t *testing.T) {
	body := passwordResetEmailBody("https://app.example.com", "tok456")

	if !strings.Contains(body, "https://app.example.com/resetpassword/tok456") {
		t.Fatal("reset link missing from body")
	}
	if !strings.Contains(body, "1 hour") {
		t.Fatal("expiry notice missing from body")
	}
}

func TestEmailContainer(t *testing.T) {
	body := emailContainer("Hello", "<p>World</p>")

	if !strings.Contains(body, "<strong>Hello</strong>") {
		t.Fatal("title missing from container")
	}
	if !strings.Contains(body, "<p>World</p>") {
		t.Fatal("inner content missing from container")
	}
	if !strings.HasPrefix(strings.TrimSpace(body), "<html>") {
		t.Fatal("expected full html document")
	}
}

func TestBookingEmailDetailList(t *testing.T) {
	b := BookingEmail{
		Date:            "2026-09-15",
		Time:            "10:00 - 11:00",
		UserName:        "Jamie Doe",
		TherapistName:   "Dr. Smith",
		MeetingType:     "video",
		Platform:        "zoom",
		PlatformDetails: "jamie@example.com",
	}
	list := b.detailList()

	for _, want := range []string{"2026-09-15", "10:00 - 11:00", "video", "zoom", "jamie@example.com"} {
		if !strings.Contains(list, want) {
			t.Fatalf("detail list missing %q", want)
		}
	}
}
