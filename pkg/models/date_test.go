package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want Date
		ok   bool
	}{
		{"2024-07-01", NewDate(2024, time.July, 1), true},
		{"", Date{}, true},
		{"2024-13-01", Date{}, false},
		{"01/07/2024", Date{}, false},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("%q expected ok, got %v", tc.in, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
		if tc.ok && !got.Equal(tc.want.Time) {
			t.Errorf("%q expected %s, got %s", tc.in, tc.want, got)
		}
	}
}

func TestDateJSON(t *testing.T) {
	var payload struct {
		Date Date `json:"date"`
	}
	if err := json.Unmarshal([]byte(`{"date":"2024-08-01"}`), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.Date.String() != "2024-08-01" {
		t.Errorf("Expected 2024-08-01, got %s", payload.Date)
	}

	out, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"date":"2024-08-01"}` {
		t.Errorf("unexpected JSON %s", out)
	}

	if err := json.Unmarshal([]byte(`{"date":20240801}`), &payload); err == nil {
		t.Error("expected error for numeric date")
	}
}

func TestYearMonth(t *testing.T) {
	m, err := ParseYearMonth("2024-07")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if m.String() != "2024-07" || m.Label() != "Jul 2024" {
		t.Errorf("unexpected rendering %s / %s", m, m.Label())
	}
	if !MustParseDate("2024-07-31").InMonth(m) {
		t.Error("2024-07-31 should be in 2024-07")
	}
	if MustParseDate("2024-08-01").InMonth(m) {
		t.Error("2024-08-01 should not be in 2024-07")
	}
	if !m.Before(YearMonth{Year: 2024, Month: time.August}) || !(YearMonth{Year: 2023, Month: time.December}).Before(m) {
		t.Error("months not ordered chronologically")
	}
	if _, err := ParseYearMonth("2024-7-1"); err == nil {
		t.Error("expected error for malformed month")
	}
}
