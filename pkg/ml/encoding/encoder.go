package encoding

import (
	"fmt"
	"math"
	"sort"

	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/common/models"
)

// NumericNames is the fixed order of numeric feature columns. The one-hot
// encounter-class block always precedes them in an encoded vector.
var NumericNames = []string{
	"encounter_length_hours",
	"conditions_365d",
	"unique_conditions_365d",
	"meds_365d",
	"unique_meds_365d",
}

// Encoder maps a feature row to a model input vector: one-hot encoded
// encounter class followed by z-scored numeric features. A class unseen at
// fit time encodes as an all-zero one-hot block.
type Encoder struct {
	Classes []string  `json:"classes"`
	Means   []float64 `json:"means"`
	Stds    []float64 `json:"stds"`
}

// Fit learns the class vocabulary (sorted for determinism) and the numeric
// scaler from training rows. Constant columns keep a unit std so encoding
// never divides by zero.
func Fit(rows []models.FeatureRow) *Encoder {
	classSet := make(map[string]struct{})
	for _, row := range rows {
		classSet[row.EncounterClass] = struct{}{}
	}
	classes := make([]string, 0, len(classSet))
	for class := range classSet {
		classes = append(classes, class)
	}
	sort.Strings(classes)

	means := make([]float64, len(NumericNames))
	stds := make([]float64, len(NumericNames))
	if len(rows) > 0 {
		for _, row := range rows {
			for i, v := range numericValues(row) {
				means[i] += v
			}
		}
		for i := range means {
			means[i] /= float64(len(rows))
		}
		for _, row := range rows {
			for i, v := range numericValues(row) {
				d := v - means[i]
				stds[i] += d * d
			}
		}
		for i := range stds {
			stds[i] /= float64(len(rows))
		}
	}
	for i := range stds {
		if stds[i] > 0 {
			stds[i] = math.Sqrt(stds[i])
		} else {
			stds[i] = 1
		}
	}

	return &Encoder{Classes: classes, Means: means, Stds: stds}
}

// FeatureNames returns the column names of an encoded vector, in order.
func (e *Encoder) FeatureNames() []string {
	names := make([]string, 0, len(e.Classes)+len(NumericNames))
	for _, class := range e.Classes {
		names = append(names, fmt.Sprintf("encounter_class=%s", class))
	}
	names = append(names, NumericNames...)
	return names
}

// Encode builds the input vector for an encounter class plus numeric values
// given in NumericNames order.
func (e *Encoder) Encode(class string, numeric []float64) []float64 {
	vector := make([]float64, len(e.Classes)+len(NumericNames))
	for i, c := range e.Classes {
		if c == class {
			vector[i] = 1
			break
		}
	}
	for i, v := range numeric {
		if i >= len(NumericNames) {
			break
		}
		vector[len(e.Classes)+i] = (v - e.Means[i]) / e.Stds[i]
	}
	return vector
}

func (e *Encoder) EncodeRow(row models.FeatureRow) []float64 {
	return e.Encode(row.EncounterClass, numericValues(row))
}

func numericValues(row models.FeatureRow) []float64 {
	return []float64{
		row.EncounterLengthHours,
		float64(row.Conditions365d),
		float64(row.UniqueConditions365d),
		float64(row.Medications365d),
		float64(row.UniqueMedications365d),
	}
}
