package models

import "testing"

func TestBookingStatusCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from BookingStatus
		to   BookingStatus
		want bool
	}{
		{name: "approved to cancelled", from: BookingApproved, to: BookingCancelled, want: true},
		{name: "cancelled to approved", from: BookingCancelled, to: BookingApproved, want: true},
		{name: "approved to approved", from: BookingApproved, to: BookingApproved, want: false},
		{name: "cancelled to cancelled", from: BookingCancelled, to: BookingCancelled, want: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.from.CanTransition(tc.to); got != tc.want {
				t.Fatalf("CanTransition(%s -> %s) = %v, want %v", tc.from, tc.to, got, tc.want)
			}
		})
	}
}

func TestMeetingTypeValid(t *testing.T) {
	for _, m := range []MeetingType{MeetingText, MeetingVoice, MeetingVideo} {
		if !m.Valid() {
			t.Fatalf("expected %s to be valid", m)
		}
	}
	if MeetingType("hologram").Valid() {
		t.Fatal("expected unknown meeting type to be invalid")
	}
}

func TestPlatformValid(t *testing.T) {
	for _, p := range []Platform{PlatformZoom, PlatformSkype, PlatformWhatsapp} {
		if !p.Valid() {
			t.Fatalf("expected %s to be valid", p)
		}
	}
	if Platform("telegram").Valid() {
		t.Fatal("expected unknown platform to be invalid")
	}
}
