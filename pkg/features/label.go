package features

import (
	"sort"
	"time"

	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/common/models"
)

// LabeledEncounter carries an encounter plus its derived readmission label.
type LabeledEncounter struct {
	models.Encounter
	Readmitted30d int
}

// BuildReadmissionLabels sorts encounters by patient and start time and
// labels each one 1 if the same patient's next encounter starts within
// windowDays of this encounter's stop. The boundary is inclusive: a gap of
// exactly windowDays whole days still counts as a readmission. Gaps are
// measured in whole days, truncated, so 30 days and 6 hours is still 30.
func BuildReadmissionLabels(encounters []models.Encounter, windowDays int) []LabeledEncounter {
	sorted := make([]models.Encounter, len(encounters))
	copy(sorted, encounters)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].PatientID != sorted[j].PatientID {
			return sorted[i].PatientID < sorted[j].PatientID
		}
		return sorted[i].Start.Before(sorted[j].Start)
	})

	labeled := make([]LabeledEncounter, len(sorted))
	for i, enc := range sorted {
		labeled[i] = LabeledEncounter{Encounter: enc}

		if i+1 >= len(sorted) || sorted[i+1].PatientID != enc.PatientID {
			continue
		}
		next := sorted[i+1]
		if enc.Stop.IsZero() || next.Start.IsZero() {
			continue
		}

		gap := next.Start.Sub(enc.Stop)
		if gap < 0 {
			continue
		}
		if wholeDays(gap) <= windowDays {
			labeled[i].Readmitted30d = 1
		}
	}

	return labeled
}

func wholeDays(d time.Duration) int {
	return int(d / (24 * time.Hour))
}
