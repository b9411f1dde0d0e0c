package timeutil

import (
	"testing"
	"time"
)

func TestValidRentMonth(t *testing.T) {
	cases := map[string]bool{
		"2025-01": true,
		"2025-12": true,
		"2025-1":  false,
		"abc":     false,
		"2025-13": false,
		"2025-00": false,
		"25-01":   false,
		"":        false,
	}
	for in, want := range cases {
		if got := ValidRentMonth(in); got != want {
			t.Errorf("ValidRentMonth(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestDueDateClampsToMonthEnd(t *testing.T) {
	loc := time.UTC
	due, err := DueDate("2025-04", 31, loc)
	if err != nil {
		t.Fatalf("DueDate: %v", err)
	}
	if due.Day() != 30 || due.Month() != time.April {
		t.Fatalf("expected 2025-04-30, got %s", due)
	}
	due, err = DueDate("2024-02", 30, loc)
	if err != nil {
		t.Fatalf("DueDate: %v", err)
	}
	if due.Day() != 29 {
		t.Fatalf("expected leap day clamp, got %s", due)
	}
	due, err = DueDate("2025-01", 10, loc)
	if err != nil {
		t.Fatalf("DueDate: %v", err)
	}
	if due.Day() != 10 {
		t.Fatalf("expected day 10, got %d", due.Day())
	}
	if _, err := DueDate("2025-01", 0, loc); err == nil {
		t.Fatal("expected error for day 0")
	}
}

func TestJoiningDueDay(t *testing.T) {
	loc := LoadLocation(DefaultLocationName)
	day, err := JoiningDueDay("2025-03-10", loc)
	if err != nil || day != 10 {
		t.Fatalf("expected 10, got %d (%v)", day, err)
	}
	day, err = JoiningDueDay("2025-03-10T20:00:00Z", loc)
	if err != nil || day != 11 {
		t.Fatalf("expected UTC evening to land on the 11th in IST, got %d (%v)", day, err)
	}
	if _, err := JoiningDueDay("", loc); err == nil {
		t.Fatal("expected error for empty date")
	}
	if _, err := JoiningDueDay("next month", loc); err == nil {
		t.Fatal("expected error for free text")
	}

	// 2024-03-10T12:00:00+05:30
	day, err = JoiningDueDay("1710052200000", loc)
	if err != nil || day != 10 {
		t.Fatalf("expected epoch millis to land on the 10th, got %d (%v)", day, err)
	}
}

func TestJoiningDueDayRejectsBareNumbers(t *testing.T) {
	loc := LoadLocation(DefaultLocationName)
	for _, in := range []string{"10", "20240310", "1710052200", "0", "-1710052200000", "17100522000000"} {
		if day, err := JoiningDueDay(in, loc); err == nil {
			t.Errorf("JoiningDueDay(%q) = %d, want error", in, day)
		}
	}
}

func TestFixedClock(t *testing.T) {
	c := &FixedClock{T: time.Date(2025, 1, 31, 23, 0, 0, 0, time.UTC)}
	if MonthKey(c.Now()) != "2025-01" {
		t.Fatalf("unexpected month %s", MonthKey(c.Now()))
	}
	c.Advance(2 * time.Hour)
	if MonthKey(c.Now()) != "2025-02" {
		t.Fatalf("unexpected month after advance %s", MonthKey(c.Now()))
	}
}
