package predictor

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/ml/encoding"
	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/ml/linear"
)

var ErrArtifactMissing = errors.New("model artifact not found")

// Artifact mirrors the JSON the trainer writes. Only the fields the
// predictor needs are decoded.
type Artifact struct {
	Model struct {
		Type         string   `json:"type"`
		Algorithm    string   `json:"algorithm"`
		FeatureNames []string `json:"feature_names"`
		Classes      []string `json:"classes"`
		Scaler       struct {
			Means []float64 `json:"means"`
			Stds  []float64 `json:"stds"`
		} `json:"scaler"`
		Weights linear.Weights `json:"weights"`
	} `json:"model"`
	TestMetrics map[string]float64 `json:"test_metrics"`
	Threshold   float64            `json:"threshold"`
	JobID       string             `json:"job_id"`
	TrainedAt   time.Time          `json:"trained_at"`
}

type Prediction struct {
	Probability float64
	Label       int
	ModelID     string
	Threshold   float64
}

// Predictor loads model artifacts from disk, caching each by file mtime so
// a retrained model is picked up without a restart.
type Predictor struct {
	dir   string
	cache map[string]cachedArtifact
	mu    sync.RWMutex
}

type cachedArtifact struct {
	artifact Artifact
	modTime  int64
}

func NewPredictor(dir string) *Predictor {
	return &Predictor{
		dir:   dir,
		cache: make(map[string]cachedArtifact),
	}
}

// Predict scores one encounter. numeric follows encoding.NumericNames
// order; unknown classes encode to an all-zero one-hot block.
func (p *Predictor) Predict(model, class string, numeric []float64) (Prediction, error) {
	artifact, err := p.loadArtifact(model)
	if err != nil {
		return Prediction{}, err
	}

	encoder := &encoding.Encoder{
		Classes: artifact.Model.Classes,
		Means:   artifact.Model.Scaler.Means,
		Stds:    artifact.Model.Scaler.Stds,
	}
	sample := encoder.Encode(class, numeric)
	if len(sample) != len(artifact.Model.Weights.Coefficients) {
		return Prediction{}, fmt.Errorf("artifact has %d coefficients for %d features",
			len(artifact.Model.Weights.Coefficients), len(sample))
	}

	prob := linear.Predict(artifact.Model.Weights, sample)

	threshold := artifact.Threshold
	if threshold <= 0 || threshold >= 1 {
		threshold = 0.5
	}
	label := 0
	if prob >= threshold {
		label = 1
	}

	return Prediction{
		Probability: prob,
		Label:       label,
		ModelID:     artifact.JobID,
		Threshold:   threshold,
	}, nil
}

// Describe exposes artifact metadata for the model info endpoint.
func (p *Predictor) Describe(model string) (Artifact, error) {
	return p.loadArtifact(model)
}

// Invalidate drops the cached artifact so the next request reloads from
// disk. Used when a model.trained event arrives.
func (p *Predictor) Invalidate(model string) {
	p.mu.Lock()
	delete(p.cache, model)
	p.mu.Unlock()
}

func (p *Predictor) loadArtifact(model string) (Artifact, error) {
	latest := filepath.Join(p.dir, fmt.Sprintf("%s_latest.json", model))
	info, err := os.Stat(latest)
	if err != nil {
		if os.IsNotExist(err) {
			return Artifact{}, fmt.Errorf("%w: %s (train a model first)", ErrArtifactMissing, latest)
		}
		return Artifact{}, err
	}
	mod := info.ModTime().UnixNano()

	p.mu.RLock()
	cached, ok := p.cache[model]
	p.mu.RUnlock()
	if ok && cached.modTime == mod {
		return cached.artifact, nil
	}

	content, err := os.ReadFile(latest)
	if err != nil {
		return Artifact{}, err
	}
	var artifact Artifact
	if err := json.Unmarshal(content, &artifact); err != nil {
		return Artifact{}, fmt.Errorf("decode artifact %s: %w", latest, err)
	}
	if len(artifact.Model.Weights.Coefficients) == 0 {
		return Artifact{}, fmt.Errorf("artifact %s missing weights", latest)
	}

	p.mu.Lock()
	p.cache[model] = cachedArtifact{artifact: artifact, modTime: mod}
	p.mu.Unlock()
	return artifact, nil
}
