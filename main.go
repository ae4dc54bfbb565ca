package main

import (
	"context"
	"net/http"
	"time"

	"pmes/config"
	"pmes/database"
	"pmes/filestore"
	"pmes/handlers"
	repository "pmes/repositories"
	routes "pmes/routes"
	services "pmes/services"

	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	clientOptions := options.Client().ApplyURI(cfg.MongoURI())
	client, err := mongo.Connect(context.TODO(), clientOptions)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	defer func() {
		if err = client.Disconnect(context.TODO()); err != nil {
			log.WithError(err).Fatal("failed to disconnect from MongoDB")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Ping(ctx, nil); err != nil {
		log.WithError(err).Fatal("failed to ping MongoDB")
	}
	log.Info("connected to MongoDB")

	db := client.Database(cfg.MongoDatabase)

	if err := database.CreateIndexes(db); err != nil {
		log.WithError(err).Warn("failed to create indexes")
	}

	store, err := filestore.NewDiskStore(cfg.UploadDir)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize file store")
	}

	userRepo := repository.NewUserRepository(db)
	measureRepo := repository.NewMeasureRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	planRepo := repository.NewPlanRepository(db)
	performanceRepo := repository.NewPerformanceRepository(db)
	fileRepo := repository.NewPerformanceFileRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	notifier := services.NewNotifier(notificationRepo, userRepo, log)
	targetService := services.NewTargetService(measureRepo, assignmentRepo)
	assignmentService := services.NewAssignmentService(userRepo, measureRepo, assignmentRepo, planRepo, targetService, notifier)
	performanceService := services.NewPerformanceService(userRepo, planRepo, performanceRepo, fileRepo, store, log)
	workerPlanService := services.NewWorkerPlanService(userRepo, measureRepo, assignmentRepo)

	assignmentHandler := handlers.NewAssignmentHandler(assignmentService)
	performanceHandler := handlers.NewPerformanceHandler(performanceService)
	workerPlanHandler := handlers.NewWorkerPlanHandler(workerPlanService)

	mux := routes.SetupRoutes(assignmentHandler, performanceHandler, workerPlanHandler, cfg.JWTSecret, cfg.UploadDir)

	corsOptions := cors.Options{
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}
	if len(cfg.AllowedOrigins) > 0 {
		corsOptions.AllowedOrigins = cfg.AllowedOrigins
	}
	handler := cors.New(corsOptions).Handler(mux)

	log.WithField("port", cfg.Port).Info("server starting")
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
