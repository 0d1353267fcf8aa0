package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/common/models"
)

// Accepted timestamp layouts. Synthea exports RFC3339 with a +00:00 offset;
// older dumps carry bare dates.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp normalises a raw CSV timestamp to UTC. Empty or
// unparseable values return the zero time, mirroring a coerced NaT.
func ParseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}

type header struct {
	index map[string]int
}

func newHeader(record []string) header {
	index := make(map[string]int, len(record))
	for i, name := range record {
		index[strings.ToUpper(strings.TrimSpace(name))] = i
	}
	return header{index: index}
}

func (h header) get(record []string, name string) string {
	i, ok := h.index[name]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}

func (h header) has(names ...string) bool {
	for _, name := range names {
		if _, ok := h.index[name]; !ok {
			return false
		}
	}
	return true
}

// ReadEncounters loads an encounters CSV. START, STOP and PATIENT columns
// are required; the encounter class falls back to TYPE for older exports.
func ReadEncounters(path string) ([]models.Encounter, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open encounters file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	first, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read encounters header: %w", err)
	}
	h := newHeader(first)
	if !h.has("START", "STOP", "PATIENT") {
		return nil, fmt.Errorf("encounters file %s must contain START, STOP and PATIENT columns", path)
	}

	var encounters []models.Encounter
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read encounters row: %w", err)
		}

		class := strings.TrimSpace(h.get(record, "ENCOUNTERCLASS"))
		if class == "" {
			class = strings.TrimSpace(h.get(record, "TYPE"))
		}

		encounters = append(encounters, models.Encounter{
			ID:        strings.TrimSpace(h.get(record, "ID")),
			PatientID: strings.TrimSpace(h.get(record, "PATIENT")),
			Start:     ParseTimestamp(h.get(record, "START")),
			Stop:      ParseTimestamp(h.get(record, "STOP")),
			Class:     class,
		})
	}

	return encounters, nil
}

// ReadClinicalEvents loads a conditions or medications CSV. The file is
// optional upstream, so callers decide how to treat a missing path; here a
// missing required column is still an error.
func ReadClinicalEvents(path string) ([]models.ClinicalEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open clinical events file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	first, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read clinical events header: %w", err)
	}
	h := newHeader(first)
	if !h.has("START", "PATIENT") {
		return nil, fmt.Errorf("clinical events file %s must contain START and PATIENT columns", path)
	}

	var eventsList []models.ClinicalEvent
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read clinical events row: %w", err)
		}

		eventsList = append(eventsList, models.ClinicalEvent{
			PatientID:   strings.TrimSpace(h.get(record, "PATIENT")),
			Start:       ParseTimestamp(h.get(record, "START")),
			Description: strings.TrimSpace(h.get(record, "DESCRIPTION")),
		})
	}

	return eventsList, nil
}
