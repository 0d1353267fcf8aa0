package training

import (
	"math/rand"

	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/common/models"
)

// StratifiedSplit shuffles rows deterministically and splits them into
// train/test sets, preserving the label ratio in both. Label groups too
// small to spare a row stay entirely in the training set.
func StratifiedSplit(rows []models.FeatureRow, testFraction float64, seed int64) (train, test []models.FeatureRow) {
	rng := rand.New(rand.NewSource(seed))

	var positives, negatives []models.FeatureRow
	for _, row := range rows {
		if row.Readmitted30d == 1 {
			positives = append(positives, row)
		} else {
			negatives = append(negatives, row)
		}
	}

	for _, group := range [][]models.FeatureRow{negatives, positives} {
		shuffled := make([]models.FeatureRow, len(group))
		copy(shuffled, group)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		cut := int(float64(len(shuffled)) * testFraction)
		if cut >= len(shuffled) {
			cut = len(shuffled) - 1
		}
		if cut < 0 {
			cut = 0
		}
		test = append(test, shuffled[:cut]...)
		train = append(train, shuffled[cut:]...)
	}

	// Interleave order is irrelevant for batch SGD after the per-group
	// shuffle, but reshuffle the training set so batches mix labels.
	rng.Shuffle(len(train), func(i, j int) {
		train[i], train[j] = train[j], train[i]
	})

	return train, test
}
