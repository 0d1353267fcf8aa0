package features

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/common/models"
)

const UnknownClass = "UNKNOWN"

var tableColumns = []string{
	"patient",
	"encounter_length_hours",
	"encounter_class",
	"conditions_365d",
	"unique_conditions_365d",
	"meds_365d",
	"unique_meds_365d",
	"readmitted_30d",
}

// BuildFeatureTable flattens labeled encounters and their lookback counts
// into one row per encounter. Durations that cannot be derived (missing or
// inverted timestamps, non-finite values) become 0 hours; a missing class
// becomes UNKNOWN.
func BuildFeatureTable(labeled []LabeledEncounter, conditions, medications []models.ClinicalEvent, lookbackDays int) []models.FeatureRow {
	condCounts := LookbackCounts(labeled, conditions, lookbackDays)
	medCounts := LookbackCounts(labeled, medications, lookbackDays)

	rows := make([]models.FeatureRow, len(labeled))
	for i, enc := range labeled {
		var hours float64
		if !enc.Start.IsZero() && !enc.Stop.IsZero() {
			hours = enc.Stop.Sub(enc.Start).Hours()
		}
		if hours < 0 || math.IsNaN(hours) || math.IsInf(hours, 0) {
			hours = 0
		}

		class := enc.Class
		if class == "" {
			class = UnknownClass
		}

		rows[i] = models.FeatureRow{
			PatientID:             enc.PatientID,
			EncounterLengthHours:  hours,
			EncounterClass:        class,
			Conditions365d:        condCounts[i].Total,
			UniqueConditions365d:  condCounts[i].Unique,
			Medications365d:       medCounts[i].Total,
			UniqueMedications365d: medCounts[i].Unique,
			Readmitted30d:         enc.Readmitted30d,
		}
	}

	return rows
}

// WriteTable persists the feature table as CSV, creating the target
// directory if needed.
func WriteTable(path string, rows []models.FeatureRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create feature table: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(tableColumns); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.PatientID,
			strconv.FormatFloat(row.EncounterLengthHours, 'f', -1, 64),
			row.EncounterClass,
			strconv.Itoa(row.Conditions365d),
			strconv.Itoa(row.UniqueConditions365d),
			strconv.Itoa(row.Medications365d),
			strconv.Itoa(row.UniqueMedications365d),
			strconv.Itoa(row.Readmitted30d),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ReadTable loads a previously written feature table.
func ReadTable(path string) ([]models.FeatureRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feature table: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	first, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read feature table header: %w", err)
	}
	index := make(map[string]int, len(first))
	for i, name := range first {
		index[name] = i
	}
	for _, col := range tableColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("feature table %s missing column %s", path, col)
		}
	}

	var rows []models.FeatureRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read feature table row: %w", err)
		}

		hours, err := strconv.ParseFloat(record[index["encounter_length_hours"]], 64)
		if err != nil {
			return nil, fmt.Errorf("parse encounter_length_hours: %w", err)
		}

		row := models.FeatureRow{
			PatientID:            record[index["patient"]],
			EncounterLengthHours: hours,
			EncounterClass:       record[index["encounter_class"]],
		}
		for col, dst := range map[string]*int{
			"conditions_365d":        &row.Conditions365d,
			"unique_conditions_365d": &row.UniqueConditions365d,
			"meds_365d":              &row.Medications365d,
			"unique_meds_365d":       &row.UniqueMedications365d,
			"readmitted_30d":         &row.Readmitted30d,
		} {
			v, err := strconv.Atoi(record[index[col]])
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", col, err)
			}
			*dst = v
		}
		rows = append(rows, row)
	}

	return rows, nil
}
