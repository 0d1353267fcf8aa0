package features

import (
	"testing"
	"time"

	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/common/models"
)

func day(d int) time.Time {
	return time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d)
}

func TestLabelWithinWindow(t *testing.T) {
	encounters := []models.Encounter{
		{PatientID: "p1", Start: day(0), Stop: day(1)},
		{PatientID: "p1", Start: day(10), Stop: day(11)},
	}

	labeled := BuildReadmissionLabels(encounters, 30)
	if labeled[0].Readmitted30d != 1 {
		t.Fatalf("expected first encounter labeled 1, got %d", labeled[0].Readmitted30d)
	}
	if labeled[1].Readmitted30d != 0 {
		t.Fatalf("expected last encounter labeled 0, got %d", labeled[1].Readmitted30d)
	}
}

func TestLabelBoundaryExactly30Days(t *testing.T) {
	encounters := []models.Encounter{
		{PatientID: "p1", Start: day(0), Stop: day(1)},
		{PatientID: "p1", Start: day(31), Stop: day(32)}, // starts exactly 30 days after stop
	}

	labeled := BuildReadmissionLabels(encounters, 30)
	if labeled[0].Readmitted30d != 1 {
		t.Fatalf("gap of exactly 30 days must be labeled 1, got %d", labeled[0].Readmitted30d)
	}
}

func TestLabelGapTruncatesToWholeDays(t *testing.T) {
	encounters := []models.Encounter{
		{PatientID: "p1", Start: day(0), Stop: day(1)},
		{PatientID: "p1", Start: day(31).Add(6 * time.Hour), Stop: day(32)}, // 30 days and 6 hours
	}

	labeled := BuildReadmissionLabels(encounters, 30)
	if labeled[0].Readmitted30d != 1 {
		t.Fatalf("30 days and 6 hours truncates to 30 whole days, got label %d", labeled[0].Readmitted30d)
	}
}

func TestLabelBeyondWindow(t *testing.T) {
	encounters := []models.Encounter{
		{PatientID: "p1", Start: day(0), Stop: day(1)},
		{PatientID: "p1", Start: day(32), Stop: day(33)}, // 31 days after stop
	}

	labeled := BuildReadmissionLabels(encounters, 30)
	if labeled[0].Readmitted30d != 0 {
		t.Fatalf("gap of 31 days must be labeled 0, got %d", labeled[0].Readmitted30d)
	}
}

func TestLabelIgnoresOtherPatients(t *testing.T) {
	encounters := []models.Encounter{
		{PatientID: "p1", Start: day(0), Stop: day(1)},
		{PatientID: "p2", Start: day(2), Stop: day(3)},
	}

	labeled := BuildReadmissionLabels(encounters, 30)
	for _, enc := range labeled {
		if enc.Readmitted30d != 0 {
			t.Fatalf("no patient has a follow-up, got label %d for %s", enc.Readmitted30d, enc.PatientID)
		}
	}
}

func TestLabelOverlappingEncounters(t *testing.T) {
	encounters := []models.Encounter{
		{PatientID: "p1", Start: day(0), Stop: day(5)},
		{PatientID: "p1", Start: day(2), Stop: day(6)}, // starts before previous stop
	}

	labeled := BuildReadmissionLabels(encounters, 30)
	if labeled[0].Readmitted30d != 0 {
		t.Fatalf("negative gap must be labeled 0, got %d", labeled[0].Readmitted30d)
	}
}

func TestLabelUnsortedInput(t *testing.T) {
	encounters := []models.Encounter{
		{PatientID: "p1", Start: day(10), Stop: day(11)},
		{PatientID: "p1", Start: day(0), Stop: day(1)},
	}

	labeled := BuildReadmissionLabels(encounters, 30)
	// Output is patient/time sorted, so the earlier encounter comes first.
	if !labeled[0].Start.Equal(day(0)) {
		t.Fatalf("expected sorted output, first start %v", labeled[0].Start)
	}
	if labeled[0].Readmitted30d != 1 {
		t.Fatalf("expected label 1 after sorting, got %d", labeled[0].Readmitted30d)
	}
}

func TestLabelMissingStop(t *testing.T) {
	encounters := []models.Encounter{
		{PatientID: "p1", Start: day(0)}, // stop never recorded
		{PatientID: "p1", Start: day(5), Stop: day(6)},
	}

	labeled := BuildReadmissionLabels(encounters, 30)
	if labeled[0].Readmitted30d != 0 {
		t.Fatalf("encounter without stop cannot anchor the window, got %d", labeled[0].Readmitted30d)
	}
}
