package features

import (
	"time"

	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/common/models"
)

// HistoryCounts holds the lookback-window aggregates for one encounter.
type HistoryCounts struct {
	Total  int
	Unique int
}

// LookbackCounts computes, per encounter, how many clinical events the same
// patient had in the trailing window before the encounter start, plus the
// distinct-description count. Both window bounds are inclusive:
// start-lookback <= event.start <= start. Events or encounters without a
// usable timestamp contribute nothing.
func LookbackCounts(encounters []LabeledEncounter, eventsList []models.ClinicalEvent, lookbackDays int) []HistoryCounts {
	byPatient := make(map[string][]models.ClinicalEvent)
	for _, ev := range eventsList {
		if ev.Start.IsZero() {
			continue
		}
		byPatient[ev.PatientID] = append(byPatient[ev.PatientID], ev)
	}

	window := time.Duration(lookbackDays) * 24 * time.Hour

	counts := make([]HistoryCounts, len(encounters))
	for i, enc := range encounters {
		if enc.Start.IsZero() {
			continue
		}
		lower := enc.Start.Add(-window)

		var seen map[string]struct{}
		for _, ev := range byPatient[enc.PatientID] {
			if ev.Start.After(enc.Start) || ev.Start.Before(lower) {
				continue
			}
			counts[i].Total++
			if seen == nil {
				seen = make(map[string]struct{})
			}
			seen[ev.Description] = struct{}{}
		}
		counts[i].Unique = len(seen)
	}

	return counts
}
