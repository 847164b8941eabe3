package services

import (
	"testing"

	"github.com/therapytreasure/backend/internal/models"
)

func TestSlotByIdentity(t *testing.T) {
	// Two slots sharing a start time are legal; identity is the full
	// (start, end) pair, so a lookup must never return the sibling.
	slots := []models.Slot{
		{StartTime: "09:00", EndTime: "10:00", IsReserved: true},
		{StartTime: "09:00", EndTime: "09:30", IsReserved: false},
		{StartTime: "11:00", EndTime: "12:00", IsReserved: false},
	}

	tests := []struct {
		name         string
		start, end   string
		wantOK       bool
		wantReserved bool
	}{
		{name: "long slot with shared start", start: "09:00", end: "10:00", wantOK: true, wantReserved: true},
		{name: "short slot with shared start", start: "09:00", end: "09:30", wantOK: true, wantReserved: false},
		{name: "distinct slot", start: "11:00", end: "12:00", wantOK: true, wantReserved: false},
		{name: "unknown end", start: "09:00", end: "09:45", wantOK: false},
		{name: "unknown start", start: "08:00", end: "09:00", wantOK: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			slot, ok := slotByIdentity(slots, tc.start, tc.end)
			if ok != tc.wantOK {
				t.Fatalf("slotByIdentity(%s, %s) ok = %v, want %v", tc.start, tc.end, ok, tc.wantOK)
			}
			if !ok {
				return
			}
			if slot.StartTime != tc.start || slot.EndTime != tc.end {
				t.Fatalf("got slot %+v, want (%s, %s)", slot, tc.start, tc.end)
			}
			if slot.IsReserved != tc.wantReserved {
				t.Fatalf("slot (%s, %s) reserved = %v, want %v", tc.start, tc.end, slot.IsReserved, tc.wantReserved)
			}
		})
	}
}
