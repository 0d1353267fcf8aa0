package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/common/config"
	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/common/database"
	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/common/events"
	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/common/logger"
	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/common/models"
	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/serving"
	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/serving/middleware"
	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/serving/predictor"
	"github.com/KFerreira1221/healthcare-readmission-ml/pkg/storage"
	"github.com/gorilla/mux"
)

func main() {
	logger.Init()
	cfg := config.Load()

	predictorEngine := predictor.NewPredictor(cfg.ModelDir)

	var featureStore *storage.FeatureStore
	if cfg.FeatureStoreEnabled {
		db, err := database.GetPostgres(cfg)
		if err != nil {
			logger.Log.WithError(err).Fatal("Failed to connect to database")
		}
		featureStore = storage.NewFeatureStore(db, database.GetRedis(cfg), cfg.FeatureCacheTTL)
		if err := featureStore.AutoMigrate(); err != nil {
			logger.Log.WithError(err).Fatal("Failed to migrate feature store tables")
		}
	}

	handler := serving.NewHTTPHandler(predictorEngine, featureStore, cfg.ModelName)

	router := mux.NewRouter()
	router.Use(middleware.Logging)
	router.Use(middleware.Recovery)
	router.Use(middleware.CORS)
	router.Use(middleware.BodyLimit(cfg.MaxRequestBody))
	router.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))

	router.HandleFunc("/health", healthCheck).Methods("GET")
	handler.Register(router)

	consumerCtx, cancelConsumer := context.WithCancel(context.Background())
	defer cancelConsumer()
	if cfg.EventsEnabled {
		consumer := events.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID)
		defer consumer.Close()
		go func() {
			err := consumer.Consume(consumerCtx, func(ctx context.Context, event models.PipelineEvent) error {
				if event.Type == events.TypeModelTrained && event.Payload["model"] == cfg.ModelName {
					predictorEngine.Invalidate(cfg.ModelName)
					logger.Log.WithField("job_id", event.Payload["job_id"]).Info("Model cache invalidated")
				}
				return nil
			})
			if err != nil && err != context.Canceled {
				logger.Log.WithError(err).Error("Pipeline event consumer stopped")
			}
		}()
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Serving Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Serving Service...")
	cancelConsumer()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
	}

	logger.Log.Info("Serving Service stopped")
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
