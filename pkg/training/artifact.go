package training

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/ml/linear"
	"github.com/google/uuid"
)

// Artifact is the persisted model: everything the serving side needs to
// reproduce the training-time encoding and score a request.
type Artifact struct {
	Model        ArtifactModel  `json:"model"`
	TrainMetrics linear.Metrics `json:"train_metrics"`
	TestMetrics  linear.Metrics `json:"test_metrics"`
	Threshold    float64        `json:"threshold"`
	JobID        string         `json:"job_id"`
	TrainedAt    time.Time      `json:"trained_at"`
	TrainingRows int            `json:"training_rows"`
	TestRows     int            `json:"test_rows"`
}

type ArtifactModel struct {
	Type         string         `json:"type"`
	Algorithm    string         `json:"algorithm"`
	FeatureNames []string       `json:"feature_names"`
	Classes      []string       `json:"classes"`
	Scaler       Scaler         `json:"scaler"`
	Weights      linear.Weights `json:"weights"`
}

type Scaler struct {
	Means []float64 `json:"means"`
	Stds  []float64 `json:"stds"`
}

// WriteArtifact writes the per-job artifact and refreshes the
// <model>_latest.json pointer the predictor loads.
func WriteArtifact(dir, modelName string, jobID uuid.UUID, artifact Artifact) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}

	payload, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return "", err
	}

	jobPath := filepath.Join(dir, fmt.Sprintf("%s_%s.json", modelName, jobID.String()))
	if err := os.WriteFile(jobPath, payload, 0o644); err != nil {
		return "", err
	}

	latest := filepath.Join(dir, fmt.Sprintf("%s_latest.json", modelName))
	if err := os.WriteFile(latest, payload, 0o644); err != nil {
		return "", err
	}

	return jobPath, nil
}
