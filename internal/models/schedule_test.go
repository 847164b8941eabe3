package models

import (
	"errors"
	"testing"
	"time"
)

func TestValidateSlot(t *testing.T) {
	tests := []struct {
		name string
		slot Slot
		err  error
	}{
		{name: "valid hour slot", slot: Slot{StartTime: "09:00", EndTime: "10:00"}},
		{name: "valid short slot", slot: Slot{StartTime: "14:30", EndTime: "14:45"}},
		{name: "end before start", slot: Slot{StartTime: "11:00", EndTime: "10:00"}, err: ErrSlotNotAfter},
		{name: "zero length", slot: Slot{StartTime: "09:00", EndTime: "09:00"}, err: ErrSlotNotAfter},
		{name: "bad start format", slot: Slot{StartTime: "9am", EndTime: "10:00"}, err: ErrBadSlotTime},
		{name: "bad end format", slot: Slot{StartTime: "09:00", EndTime: "25:99"}, err: ErrBadSlotTime},
		{name: "empty times", slot: Slot{}, err: ErrBadSlotTime},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateSlot(tc.slot)
			if !errors.Is(err, tc.err) {
				t.Fatalf("ValidateSlot(%+v) = %v, want %v", tc.slot, err, tc.err)
			}
		})
	}
}

func TestSortSlots(t *testing.T) {
	slots := []Slot{
		{StartTime: "15:00", EndTime: "16:00"},
		{StartTime: "09:00", EndTime: "10:00"},
		{StartTime: "12:00", EndTime: "13:00"},
	}
	SortSlots(slots)

	want := []string{"09:00", "12:00", "15:00"}
	for i, s := range slots {
		if s.StartTime != want[i] {
			t.Fatalf("slot %d starts at %s, want %s", i, s.StartTime, want[i])
		}
	}
}

func TestParseScheduleDate(t *testing.T) {
	date, err := ParseScheduleDate("2026-09-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	if !date.Equal(want) {
		t.Fatalf("got %v, want %v", date, want)
	}

	if _, err := ParseScheduleDate("15/09/2026"); err == nil {
		t.Fatal("expected error for non-ISO date")
	}
	if _, err := ParseScheduleDate(""); err == nil {
		t.Fatal("expected error for empty date")
	}
}
