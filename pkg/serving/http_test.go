package serving

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/common/logger"
	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/common/models"
	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/serving/predictor"
	"github.com/gorilla/mux"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

const testArtifact = `{
  "model": {
    "type": "classifier",
    "algorithm": "logistic_regression",
    "feature_names": ["encounter_class=ambulatory", "encounter_class=inpatient", "encounter_length_hours", "conditions_365d", "unique_conditions_365d", "meds_365d", "unique_meds_365d"],
    "classes": ["ambulatory", "inpatient"],
    "scaler": {"means": [0, 0, 0, 0, 0], "stds": [1, 1, 1, 1, 1]},
    "weights": {"bias": -2, "coefficients": [-1, 1, 0.05, 0.2, 0.1, 0.1, 0.1]}
  },
  "test_metrics": {"accuracy": 0.91, "roc_auc": 0.88},
  "threshold": 0.5,
  "job_id": "job-42"
}`

func newTestServer(t *testing.T, withModel bool) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	if withModel {
		if err := os.WriteFile(filepath.Join(dir, "readmission_latest.json"), []byte(testArtifact), 0o644); err != nil {
			t.Fatalf("write artifact: %v", err)
		}
	}

	handler := NewHTTPHandler(predictor.NewPredictor(dir), nil, "readmission")
	router := mux.NewRouter()
	handler.Register(router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func postPredict(t *testing.T, server *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(server.URL+"/api/v1/predict", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestPredictEndpoint(t *testing.T) {
	server := newTestServer(t, true)

	resp := postPredict(t, server, `{"encounter_length_hours": 48, "encounter_class": "inpatient", "conditions_365d": 5}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result models.PredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.ReadmissionProbability < 0 || result.ReadmissionProbability > 1 {
		t.Fatalf("probability out of range: %f", result.ReadmissionProbability)
	}

	wantLabel := 0
	if result.ReadmissionProbability >= 0.5 {
		wantLabel = 1
	}
	if result.Readmitted30d != wantLabel {
		t.Fatalf("label %d inconsistent with probability %f", result.Readmitted30d, result.ReadmissionProbability)
	}
	if result.ModelVersion != "job-42" {
		t.Fatalf("expected model version job-42, got %q", result.ModelVersion)
	}
}

func TestPredictDefaultsHistoryToZero(t *testing.T) {
	server := newTestServer(t, true)

	resp := postPredict(t, server, `{"encounter_length_hours": 2, "encounter_class": "ambulatory"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result models.PredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	// bias -2, ambulatory -1, hours 2*0.05: z = -2.9, well below threshold.
	if result.Readmitted30d != 0 {
		t.Fatalf("expected label 0, got %d (prob %f)", result.Readmitted30d, result.ReadmissionProbability)
	}
}

func TestPredictValidation(t *testing.T) {
	server := newTestServer(t, true)

	cases := map[string]string{
		"missing class":  `{"encounter_length_hours": 10}`,
		"missing hours":  `{"encounter_class": "inpatient"}`,
		"negative hours": `{"encounter_length_hours": -4, "encounter_class": "inpatient"}`,
		"bad json":       `{"encounter_length_hours": `,
	}
	for name, body := range cases {
		resp := postPredict(t, server, body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", name, resp.StatusCode)
		}
	}
}

func TestPredictModelMissing(t *testing.T) {
	server := newTestServer(t, false)

	resp := postPredict(t, server, `{"encounter_length_hours": 10, "encounter_class": "inpatient"}`)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}

func TestModelInfoEndpoint(t *testing.T) {
	server := newTestServer(t, true)

	resp, err := http.Get(server.URL + "/api/v1/model")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var info map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if info["algorithm"] != "logistic_regression" {
		t.Fatalf("unexpected algorithm %v", info["algorithm"])
	}
	if info["job_id"] != "job-42" {
		t.Fatalf("unexpected job id %v", info["job_id"])
	}
}

func TestModelInfoMissing(t *testing.T) {
	server := newTestServer(t, false)

	resp, err := http.Get(server.URL + "/api/v1/model")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}
