package training

import (
	"testing"

	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/common/models"
)

func syntheticRows(n, positives int) []models.FeatureRow {
	rows := make([]models.FeatureRow, n)
	for i := range rows {
		rows[i].PatientID = "p"
		if i < positives {
			rows[i].Readmitted30d = 1
		}
	}
	return rows
}

func TestStratifiedSplitRatios(t *testing.T) {
	rows := syntheticRows(100, 20)
	train, test := StratifiedSplit(rows, 0.2, 42)

	if len(train)+len(test) != 100 {
		t.Fatalf("split lost rows: %d + %d", len(train), len(test))
	}
	if len(test) != 20 {
		t.Fatalf("expected 20 test rows, got %d", len(test))
	}

	testPositives := 0
	for _, row := range test {
		testPositives += row.Readmitted30d
	}
	if testPositives != 4 {
		t.Fatalf("expected 4 positive test rows, got %d", testPositives)
	}
}

func TestStratifiedSplitDeterministic(t *testing.T) {
	rows := syntheticRows(50, 10)
	_, test1 := StratifiedSplit(rows, 0.2, 7)
	_, test2 := StratifiedSplit(rows, 0.2, 7)

	if len(test1) != len(test2) {
		t.Fatalf("same seed must give same split sizes: %d vs %d", len(test1), len(test2))
	}
	for i := range test1 {
		if test1[i] != test2[i] {
			t.Fatalf("same seed must give identical splits at %d", i)
		}
	}
}

func TestStratifiedSplitTinyGroups(t *testing.T) {
	rows := syntheticRows(3, 1)
	train, test := StratifiedSplit(rows, 0.2, 1)
	if len(train) != 3 || len(test) != 0 {
		t.Fatalf("tiny groups must stay in training: train=%d test=%d", len(train), len(test))
	}
}
