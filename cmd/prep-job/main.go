package main

import (
	"context"
	"os"
	"path/filepath"
	"strconv"

	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/common/config"
	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/common/database"
	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/common/events"
	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/common/logger"
	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/common/models"
	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/dataset"
	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/features"
	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/storage"
)

func main() {
	logger.Init()
	cfg := config.Load()

	encountersPath := filepath.Join(cfg.RawDataDir, "encounters.csv")
	if _, err := os.Stat(encountersPath); err != nil {
		logger.Log.WithField("path", encountersPath).Fatal("Missing encounters.csv; put a Synthea encounters export in the raw data dir")
	}

	encounters, err := dataset.ReadEncounters(encountersPath)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to read encounters")
	}
	logger.Log.WithField("encounters", len(encounters)).Info("Encounters loaded")

	labeled := features.BuildReadmissionLabels(encounters, cfg.ReadmissionWindowDays)

	conditions := readOptionalEvents(filepath.Join(cfg.RawDataDir, "conditions.csv"))
	medications := readOptionalEvents(filepath.Join(cfg.RawDataDir, "medications.csv"))

	rows := features.BuildFeatureTable(labeled, conditions, medications, cfg.LookbackDays)

	outPath := filepath.Join(cfg.ProcessedDataDir, cfg.DatasetFile)
	if err := features.WriteTable(outPath, rows); err != nil {
		logger.Log.WithError(err).Fatal("Failed to write feature table")
	}

	positives := 0
	for _, row := range rows {
		positives += row.Readmitted30d
	}
	logger.Log.WithFields(map[string]interface{}{
		"path":      outPath,
		"rows":      len(rows),
		"positives": positives,
	}).Info("Processed dataset saved")

	ctx := context.Background()

	if cfg.FeatureStoreEnabled {
		db, err := database.GetPostgres(cfg)
		if err != nil {
			logger.Log.WithError(err).Fatal("Failed to connect to database")
		}
		featureStore := storage.NewFeatureStore(db, database.GetRedis(cfg), cfg.FeatureCacheTTL)
		if err := featureStore.AutoMigrate(); err != nil {
			logger.Log.WithError(err).Fatal("Failed to migrate feature store tables")
		}
		if err := featureStore.Materialize(ctx, rows); err != nil {
			logger.Log.WithError(err).Fatal("Failed to materialize patient features")
		}
	}

	if cfg.EventsEnabled {
		producer := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
		if err := producer.Publish(ctx, events.TypeDatasetReady, "prep-job", map[string]string{
			"path": outPath,
			"rows": strconv.Itoa(len(rows)),
		}); err != nil {
			logger.Log.WithError(err).Warn("failed to publish dataset.ready event")
		}
	}
}

func readOptionalEvents(path string) []models.ClinicalEvent {
	if _, err := os.Stat(path); err != nil {
		logger.Log.WithField("path", path).Info("Optional clinical events file not present, counts default to zero")
		return nil
	}
	eventsList, err := dataset.ReadClinicalEvents(path)
	if err != nil {
		logger.Log.WithError(err).WithField("path", path).Fatal("Failed to read clinical events")
	}
	logger.Log.WithFields(map[string]interface{}{"path": path, "events": len(eventsList)}).Info("Clinical events loaded")
	return eventsList
}
