package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/common/logger"
	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/common/models"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrPatientNotFound = errors.New("patient features not found")

// PatientFeatureModel is the offline per-patient feature row: the most
// recent lookback counts materialized by the prep job.
type PatientFeatureModel struct {
	PatientID             string    `gorm:"primaryKey;column:patient_id"`
	Conditions365d        int       `gorm:"column:conditions_365d"`
	UniqueConditions365d  int       `gorm:"column:unique_conditions_365d"`
	Medications365d       int       `gorm:"column:meds_365d"`
	UniqueMedications365d int       `gorm:"column:unique_meds_365d"`
	UpdatedAt             time.Time `gorm:"column:updated_at"`
}

func (PatientFeatureModel) TableName() string {
	return "patient_features"
}

// PatientFeatures is the online (cached) representation.
type PatientFeatures struct {
	Conditions365d        int `json:"conditions_365d"`
	UniqueConditions365d  int `json:"unique_conditions_365d"`
	Medications365d       int `json:"meds_365d"`
	UniqueMedications365d int `json:"unique_meds_365d"`
}

// FeatureStore keeps per-patient history counts in postgres with a redis
// read-through cache in front.
type FeatureStore struct {
	db       *gorm.DB
	redis    *redis.Client
	cacheTTL time.Duration
}

func NewFeatureStore(db *gorm.DB, redisClient *redis.Client, cacheTTL time.Duration) *FeatureStore {
	return &FeatureStore{db: db, redis: redisClient, cacheTTL: cacheTTL}
}

func (f *FeatureStore) AutoMigrate() error {
	return f.db.AutoMigrate(&PatientFeatureModel{})
}

// Materialize upserts one row per patient. Rows are expected in the
// patient/time order the labeler produces, so the last row per patient is
// the patient's most recent encounter.
func (f *FeatureStore) Materialize(ctx context.Context, rows []models.FeatureRow) error {
	latest := make(map[string]models.FeatureRow, len(rows))
	for _, row := range rows {
		latest[row.PatientID] = row
	}

	for patientID, row := range latest {
		model := PatientFeatureModel{
			PatientID:             patientID,
			Conditions365d:        row.Conditions365d,
			UniqueConditions365d:  row.UniqueConditions365d,
			Medications365d:       row.Medications365d,
			UniqueMedications365d: row.UniqueMedications365d,
			UpdatedAt:             time.Now().UTC(),
		}
		err := f.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "patient_id"}},
			UpdateAll: true,
		}).Create(&model).Error
		if err != nil {
			return fmt.Errorf("materialize features for patient %s: %w", patientID, err)
		}

		if f.redis != nil {
			if err := f.cache(ctx, patientID, toOnline(model)); err != nil {
				logger.Log.WithError(err).WithField("patient_id", patientID).Warn("failed to cache features")
			}
		}
	}

	logger.Log.WithField("patients", len(latest)).Info("patient features materialized")
	return nil
}

// GetPatientFeatures reads the cache first and falls back to postgres,
// refilling the cache on a hit.
func (f *FeatureStore) GetPatientFeatures(ctx context.Context, patientID string) (PatientFeatures, error) {
	if f.redis != nil {
		data, err := f.redis.Get(ctx, featureKey(patientID)).Result()
		if err == nil {
			var features PatientFeatures
			if err := json.Unmarshal([]byte(data), &features); err == nil {
				return features, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			logger.Log.WithError(err).Debug("feature cache read failed")
		}
	}

	var model PatientFeatureModel
	result := f.db.WithContext(ctx).First(&model, "patient_id = ?", patientID)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return PatientFeatures{}, ErrPatientNotFound
	}
	if result.Error != nil {
		return PatientFeatures{}, result.Error
	}

	features := toOnline(model)
	if f.redis != nil {
		if err := f.cache(ctx, patientID, features); err != nil {
			logger.Log.WithError(err).Debug("feature cache refill failed")
		}
	}
	return features, nil
}

func (f *FeatureStore) cache(ctx context.Context, patientID string, features PatientFeatures) error {
	data, err := json.Marshal(features)
	if err != nil {
		return err
	}
	return f.redis.Set(ctx, featureKey(patientID), data, f.cacheTTL).Err()
}

func featureKey(patientID string) string {
	return fmt.Sprintf("features:%s", patientID)
}

func toOnline(model PatientFeatureModel) PatientFeatures {
	return PatientFeatures{
		Conditions365d:        model.Conditions365d,
		UniqueConditions365d:  model.UniqueConditions365d,
		Medications365d:       model.Medications365d,
		UniqueMedications365d: model.UniqueMedications365d,
	}
}
