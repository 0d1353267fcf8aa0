package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/common/config"
	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/common/database"
	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/common/events"
	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/common/logger"
	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/training"
)

func main() {
	logger.Init()
	cfg := config.Load()

	datasetPath := filepath.Join(cfg.ProcessedDataDir, cfg.DatasetFile)
	if _, err := os.Stat(datasetPath); err != nil {
		logger.Log.WithField("path", datasetPath).Fatal("Missing processed dataset; run prep-job first")
	}

	modelCfg, err := training.LoadModelConfig(cfg.ModelConfigPath)
	if err != nil {
		logger.Log.WithError(err).WithField("path", cfg.ModelConfigPath).Fatal("Failed to load model config")
	}

	var repo *training.Repository
	if cfg.RegistryEnabled {
		db, err := database.GetPostgres(cfg)
		if err != nil {
			logger.Log.WithError(err).Fatal("Failed to connect to database")
		}
		repo = training.NewRepository(db)
		if err := repo.AutoMigrate(); err != nil {
			logger.Log.WithError(err).Fatal("Failed to migrate training job tables")
		}
	}

	var producer *events.Producer
	if cfg.EventsEnabled {
		producer = events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
	}

	service := training.NewService(repo, producer, cfg.ModelDir, cfg.ModelName)

	job, err := service.Run(context.Background(), datasetPath, modelCfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("Training failed")
	}

	logger.Log.WithFields(map[string]interface{}{
		"job_id":   job.ID,
		"artifact": job.ArtifactPath,
		"metrics":  job.Metrics,
	}).Info("Model trained")
}
