package training

import (
	"context"
	"fmt"
	"time"

	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/common/events"
	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/common/logger"
	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/common/models"
	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/features"
	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/ml/encoding"
	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/ml/linear"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Service runs training jobs end to end: dataset in, artifact out. The
// registry repository and event producer are optional; a nil value skips
// that integration.
type Service struct {
	repo      *Repository
	producer  *events.Producer
	modelDir  string
	modelName string
}

func NewService(repo *Repository, producer *events.Producer, modelDir, modelName string) *Service {
	return &Service{
		repo:      repo,
		producer:  producer,
		modelDir:  modelDir,
		modelName: modelName,
	}
}

// Run trains a model on the feature table at datasetPath and returns the
// completed job record.
func (s *Service) Run(ctx context.Context, datasetPath string, cfg ModelConfig) (models.TrainingJob, error) {
	jobID := uuid.New()
	now := time.Now().UTC()
	job := &JobModel{
		ID:        jobID,
		ModelName: s.modelName,
		Config:    datatypes.JSONMap(configMap(cfg)),
		Status:    StatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
		StartedAt: &now,
	}
	if s.repo != nil {
		if err := s.repo.Create(ctx, job); err != nil {
			logger.Log.WithError(err).Error("failed to record training job")
		}
	}

	rows, err := features.ReadTable(datasetPath)
	if err != nil {
		return s.failJob(ctx, job, fmt.Errorf("load dataset: %w", err))
	}
	if len(rows) == 0 {
		return s.failJob(ctx, job, fmt.Errorf("dataset %s is empty", datasetPath))
	}

	trainRows, testRows := StratifiedSplit(rows, cfg.TestFraction, cfg.Seed)
	if len(trainRows) == 0 {
		return s.failJob(ctx, job, fmt.Errorf("training split is empty"))
	}

	encoder := encoding.Fit(trainRows)
	trainSamples, trainLabels := encodeRows(encoder, trainRows)
	weights, trainMetrics := linear.TrainLogistic(trainSamples, trainLabels, linear.Options{
		Epochs:       cfg.Epochs,
		LearningRate: cfg.LearningRate,
		BatchSize:    cfg.BatchSize,
	})

	testMetrics := trainMetrics
	if len(testRows) > 0 {
		testSamples, testLabels := encodeRows(encoder, testRows)
		testMetrics = linear.Evaluate(weights, testSamples, testLabels)
	}

	artifact := Artifact{
		Model: ArtifactModel{
			Type:         "classifier",
			Algorithm:    "logistic_regression",
			FeatureNames: encoder.FeatureNames(),
			Classes:      encoder.Classes,
			Scaler:       Scaler{Means: encoder.Means, Stds: encoder.Stds},
			Weights:      weights,
		},
		TrainMetrics: trainMetrics,
		TestMetrics:  testMetrics,
		Threshold:    cfg.Threshold,
		JobID:        jobID.String(),
		TrainedAt:    time.Now().UTC(),
		TrainingRows: len(trainRows),
		TestRows:     len(testRows),
	}

	artifactPath, err := WriteArtifact(s.modelDir, s.modelName, jobID, artifact)
	if err != nil {
		return s.failJob(ctx, job, fmt.Errorf("write artifact: %w", err))
	}

	metrics := map[string]interface{}{
		"train_loss":     trainMetrics.Loss,
		"train_accuracy": trainMetrics.Accuracy,
		"test_loss":      testMetrics.Loss,
		"test_accuracy":  testMetrics.Accuracy,
		"test_roc_auc":   testMetrics.AUC,
		"test_precision": testMetrics.Precision,
		"test_recall":    testMetrics.Recall,
		"training_rows":  len(trainRows),
		"test_rows":      len(testRows),
	}

	job.Status = StatusCompleted
	job.Metrics = datatypes.JSONMap(metrics)
	job.ArtifactPath = artifactPath
	completed := time.Now().UTC()
	job.CompletedAt = &completed
	if s.repo != nil {
		if err := s.repo.UpdateStatus(ctx, jobID, StatusCompleted, metrics, artifactPath, ""); err != nil {
			logger.Log.WithError(err).Error("failed to mark training job complete")
		}
		if err := s.repo.SetTimestamps(ctx, jobID, nil, &completed); err != nil {
			logger.Log.WithError(err).Error("failed to set completion timestamp")
		}
	}

	logger.Log.WithFields(map[string]interface{}{
		"job_id":        jobID,
		"artifact":      artifactPath,
		"test_roc_auc":  testMetrics.AUC,
		"test_accuracy": testMetrics.Accuracy,
	}).Info("training job completed")

	if s.producer != nil {
		if err := s.producer.Publish(ctx, events.TypeModelTrained, "train-job", map[string]string{
			"job_id":   jobID.String(),
			"model":    s.modelName,
			"artifact": artifactPath,
		}); err != nil {
			logger.Log.WithError(err).Warn("failed to publish model.trained event")
		}
	}

	return toDomain(job), nil
}

func (s *Service) failJob(ctx context.Context, job *JobModel, err error) (models.TrainingJob, error) {
	logger.Log.WithError(err).Error("training job failed")
	job.Status = StatusFailed
	job.ErrorMessage = err.Error()
	completed := time.Now().UTC()
	job.CompletedAt = &completed
	if s.repo != nil {
		_ = s.repo.UpdateStatus(ctx, job.ID, StatusFailed, nil, "", err.Error())
		_ = s.repo.SetTimestamps(ctx, job.ID, nil, &completed)
	}
	return toDomain(job), err
}

func encodeRows(encoder *encoding.Encoder, rows []models.FeatureRow) ([][]float64, []float64) {
	samples := make([][]float64, len(rows))
	labels := make([]float64, len(rows))
	for i, row := range rows {
		samples[i] = encoder.EncodeRow(row)
		labels[i] = float64(row.Readmitted30d)
	}
	return samples, labels
}

func configMap(cfg ModelConfig) map[string]interface{} {
	return map[string]interface{}{
		"epochs":        cfg.Epochs,
		"learning_rate": cfg.LearningRate,
		"batch_size":    cfg.BatchSize,
		"test_fraction": cfg.TestFraction,
		"seed":          cfg.Seed,
		"threshold":     cfg.Threshold,
	}
}
