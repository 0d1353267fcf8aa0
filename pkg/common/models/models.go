package models

import (
	"time"

	"github.com/google/uuid"
)

// Raw clinical records (Synthea-style CSV exports).
type Encounter struct {
	ID        string    `json:"id"`
	PatientID string    `json:"patient_id"`
	Start     time.Time `json:"start"`
	Stop      time.Time `json:"stop"`
	Class     string    `json:"class"`
}

// ClinicalEvent is a condition or medication record. Only the patient,
// onset timestamp and description matter for the lookback counts.
type ClinicalEvent struct {
	PatientID   string    `json:"patient_id"`
	Start       time.Time `json:"start"`
	Description string    `json:"description"`
}

// FeatureRow is one training/inference example: the flattened join of an
// encounter with its label and lookback history counts.
type FeatureRow struct {
	PatientID             string  `json:"patient_id"`
	EncounterLengthHours  float64 `json:"encounter_length_hours"`
	EncounterClass        string  `json:"encounter_class"`
	Conditions365d        int     `json:"conditions_365d"`
	UniqueConditions365d  int     `json:"unique_conditions_365d"`
	Medications365d       int     `json:"meds_365d"`
	UniqueMedications365d int     `json:"unique_meds_365d"`
	Readmitted30d         int     `json:"readmitted_30d"`
}

// Serving contract
type PredictRequest struct {
	PatientID             string   `json:"patient_id,omitempty"`
	EncounterLengthHours  *float64 `json:"encounter_length_hours" validate:"required,gte=0"`
	EncounterClass        string   `json:"encounter_class" validate:"required"`
	Conditions365d        *int     `json:"conditions_365d,omitempty" validate:"omitempty,gte=0"`
	UniqueConditions365d  *int     `json:"unique_conditions_365d,omitempty" validate:"omitempty,gte=0"`
	Medications365d       *int     `json:"meds_365d,omitempty" validate:"omitempty,gte=0"`
	UniqueMedications365d *int     `json:"unique_meds_365d,omitempty" validate:"omitempty,gte=0"`
}

type PredictResponse struct {
	ReadmissionProbability float64 `json:"readmission_probability"`
	Readmitted30d          int     `json:"readmitted_30d"`
	ModelVersion           string  `json:"model_version"`
	LatencyMs              int64   `json:"latency_ms"`
}

// Training job as exposed by the registry.
type TrainingJob struct {
	ID           uuid.UUID              `json:"id"`
	ModelName    string                 `json:"model_name"`
	Status       string                 `json:"status"`
	Config       map[string]interface{} `json:"config,omitempty"`
	Metrics      map[string]interface{} `json:"metrics,omitempty"`
	ArtifactPath string                 `json:"artifact_path,omitempty"`
	ErrorMessage string                 `json:"error_message,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	StartedAt    *time.Time             `json:"started_at,omitempty"`
	CompletedAt  *time.Time             `json:"completed_at,omitempty"`
}

// Pipeline lifecycle event published to Kafka.
type PipelineEvent struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"` // dataset.ready, model.trained
	Source    string            `json:"source"`
	Payload   map[string]string `json:"payload,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}
