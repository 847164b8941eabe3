package models

import "testing"

func TestApplicationStatusCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from ApplicationStatus
		to   ApplicationStatus
		want bool
	}{
		{name: "pending to approved", from: ApplicationPending, to: ApplicationApproved, want: true},
		{name: "pending to rejected", from: ApplicationPending, to: ApplicationRejected, want: true},
		{name: "approved to rejected", from: ApplicationApproved, to: ApplicationRejected, want: false},
		{name: "rejected to approved", from: ApplicationRejected, to: ApplicationApproved, want: false},
		{name: "approved to pending", from: ApplicationApproved, to: ApplicationPending, want: false},
		{name: "pending to pending", from: ApplicationPending, to: ApplicationPending, want: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.from.CanTransition(tc.to); got != tc.want {
				t.Fatalf("CanTransition(%s -> %s) = %v, want %v", tc.from, tc.to, got, tc.want)
			}
		})
	}
}

func TestApplicationStatusValid(t *testing.T) {
	for _, s := range []ApplicationStatus{ApplicationPending, ApplicationApproved, ApplicationRejected} {
		if !s.Valid() {
			t.Fatalf("expected %s to be valid", s)
		}
	}
	if ApplicationStatus("archived").Valid() {
		t.Fatal("expected unknown status to be invalid")
	}
}
