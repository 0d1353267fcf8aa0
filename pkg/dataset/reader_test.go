package dataset

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestReadEncounters(t *testing.T) {
	csvData := "Id,START,STOP,PATIENT,ENCOUNTERCLASS,DESCRIPTION\n" +
		"e1,2021-05-01T10:00:00+02:00,2021-05-01T14:00:00+02:00,p1,ambulatory,Checkup\n" +
		"e2,2021-06-01,2021-06-02,p2,inpatient,Stay\n"
	path := writeFile(t, "encounters.csv", csvData)

	encounters, err := ReadEncounters(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(encounters) != 2 {
		t.Fatalf("expected 2 encounters, got %d", len(encounters))
	}

	// Offset timestamps normalise to UTC.
	want := time.Date(2021, 5, 1, 8, 0, 0, 0, time.UTC)
	if !encounters[0].Start.Equal(want) {
		t.Fatalf("expected %v, got %v", want, encounters[0].Start)
	}
	if encounters[0].Class != "ambulatory" {
		t.Fatalf("expected class ambulatory, got %q", encounters[0].Class)
	}
	if encounters[1].Start.Hour() != 0 {
		t.Fatalf("date-only timestamp should parse at midnight, got %v", encounters[1].Start)
	}
}

func TestReadEncountersTypeFallback(t *testing.T) {
	csvData := "Id,START,STOP,PATIENT,TYPE\n" +
		"e1,2021-05-01T10:00:00Z,2021-05-01T14:00:00Z,p1,emergency\n"
	path := writeFile(t, "encounters.csv", csvData)

	encounters, err := ReadEncounters(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if encounters[0].Class != "emergency" {
		t.Fatalf("expected TYPE fallback, got %q", encounters[0].Class)
	}
}

func TestReadEncountersMissingColumns(t *testing.T) {
	path := writeFile(t, "encounters.csv", "Id,START,PATIENT\ne1,2021-05-01,p1\n")

	if _, err := ReadEncounters(path); err == nil {
		t.Fatal("expected error when STOP column is missing")
	}
}

func TestReadEncountersMissingFile(t *testing.T) {
	if _, err := ReadEncounters(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestReadClinicalEvents(t *testing.T) {
	csvData := "START,STOP,PATIENT,CODE,DESCRIPTION\n" +
		"2020-01-15T09:30:00Z,,p1,1234,Hypertension\n" +
		"not-a-date,,p1,5678,Diabetes\n"
	path := writeFile(t, "conditions.csv", csvData)

	eventsList, err := ReadClinicalEvents(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(eventsList) != 2 {
		t.Fatalf("expected 2 events, got %d", len(eventsList))
	}
	if eventsList[0].Description != "Hypertension" {
		t.Fatalf("expected description Hypertension, got %q", eventsList[0].Description)
	}
	if !eventsList[1].Start.IsZero() {
		t.Fatalf("unparseable timestamp must coerce to zero, got %v", eventsList[1].Start)
	}
}

func TestParseTimestampFormats(t *testing.T) {
	if ts := ParseTimestamp("2021-05-01 10:00:00"); ts.IsZero() {
		t.Fatal("space-separated layout should parse")
	}
	if ts := ParseTimestamp(""); !ts.IsZero() {
		t.Fatalf("empty value must be zero time, got %v", ts)
	}
	ts := ParseTimestamp("2021-05-01T10:00:00-05:00")
	if ts.Hour() != 15 {
		t.Fatalf("expected 15:00 UTC, got %v", ts)
	}
}
