package serving

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/common/logger"
	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/common/models"
	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/serving/predictor"
	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/storage"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type HTTPHandler struct {
	predictor    *predictor.Predictor
	featureStore *storage.FeatureStore // optional
	modelName    string
	validate     *validator.Validate
}

func NewHTTPHandler(pred *predictor.Predictor, featureStore *storage.FeatureStore, modelName string) *HTTPHandler {
	return &HTTPHandler{
		predictor:    pred,
		featureStore: featureStore,
		modelName:    modelName,
		validate:     validator.New(),
	}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/api/v1/predict", h.handlePredict).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/model", h.handleModel).Methods(http.MethodGet)
}

func (h *HTTPHandler) handlePredict(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Log.WithError(err).Warn("invalid predict payload")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, validationMessage(err), http.StatusBadRequest)
		return
	}

	numeric := h.resolveNumeric(r, req)

	prediction, err := h.predictor.Predict(h.modelName, req.EncounterClass, numeric)
	if err != nil {
		if errors.Is(err, predictor.ErrArtifactMissing) {
			http.Error(w, "model not available", http.StatusServiceUnavailable)
			return
		}
		logger.Log.WithError(err).Error("prediction failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	latency := time.Since(start)
	resp := models.PredictResponse{
		ReadmissionProbability: prediction.Probability,
		Readmitted30d:          prediction.Label,
		ModelVersion:           prediction.ModelID,
		LatencyMs:              latency.Milliseconds(),
	}

	logger.Log.WithFields(map[string]interface{}{
		"probability": prediction.Probability,
		"label":       prediction.Label,
		"latency_ms":  latency.Milliseconds(),
	}).Info("prediction served")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *HTTPHandler) handleModel(w http.ResponseWriter, r *http.Request) {
	artifact, err := h.predictor.Describe(h.modelName)
	if err != nil {
		if errors.Is(err, predictor.ErrArtifactMissing) {
			http.Error(w, "model not available", http.StatusServiceUnavailable)
			return
		}
		logger.Log.WithError(err).Error("failed to describe model")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	info := map[string]interface{}{
		"name":          h.modelName,
		"algorithm":     artifact.Model.Algorithm,
		"job_id":        artifact.JobID,
		"trained_at":    artifact.TrainedAt,
		"threshold":     artifact.Threshold,
		"feature_names": artifact.Model.FeatureNames,
		"metrics":       artifact.TestMetrics,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(info)
}

// resolveNumeric builds the numeric feature vector. Omitted history counts
// default to zero; when all four are omitted and the request names a
// patient, the feature store (if wired) fills them in.
func (h *HTTPHandler) resolveNumeric(r *http.Request, req models.PredictRequest) []float64 {
	numeric := []float64{*req.EncounterLengthHours, 0, 0, 0, 0}

	historyOmitted := req.Conditions365d == nil && req.UniqueConditions365d == nil &&
		req.Medications365d == nil && req.UniqueMedications365d == nil

	if historyOmitted && req.PatientID != "" && h.featureStore != nil {
		features, err := h.featureStore.GetPatientFeatures(r.Context(), req.PatientID)
		if err != nil {
			if !errors.Is(err, storage.ErrPatientNotFound) {
				logger.Log.WithError(err).WithField("patient_id", req.PatientID).Warn("feature store lookup failed")
			}
		} else {
			numeric[1] = float64(features.Conditions365d)
			numeric[2] = float64(features.UniqueConditions365d)
			numeric[3] = float64(features.Medications365d)
			numeric[4] = float64(features.UniqueMedications365d)
		}
		return numeric
	}

	if req.Conditions365d != nil {
		numeric[1] = float64(*req.Conditions365d)
	}
	if req.UniqueConditions365d != nil {
		numeric[2] = float64(*req.UniqueConditions365d)
	}
	if req.Medications365d != nil {
		numeric[3] = float64(*req.Medications365d)
	}
	if req.UniqueMedications365d != nil {
		numeric[4] = float64(*req.UniqueMedications365d)
	}
	return numeric
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		first := verrs[0]
		return fmt.Sprintf("invalid field %s: failed '%s' validation", first.Field(), first.Tag())
	}
	return "invalid request"
}
