package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	uberzap "go.uber.org/zap"

	"incident-service/config"
	"incident-service/internal/alert"
	"incident-service/internal/devicetoken"
	"incident-service/internal/directory"
	"incident-service/internal/hub"
	"incident-service/internal/incident"
	"incident-service/internal/notify"
	"incident-service/internal/sequence"
	"incident-service/pkg/consul"
	"incident-service/pkg/firebase"
	"incident-service/pkg/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := config.LoadConfig()

	logger, err := zap.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	consulConn := consul.NewConsulConn(logger, cfg)
	consulConn.Connect()
	defer consulConn.Deregister()

	mongoClient, err := connectToMongoDB(cfg.MongoURI)
	if err != nil {
		logger.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.Fatal(err)
		}
	}()

	db := mongoClient.Database(cfg.MongoDB)
	dir := directory.NewMongoDirectory(db)
	seq := sequence.NewMongoAllocator(db)

	tokenRepository := devicetoken.NewTokenRepository(db.Collection("device_tokens"))
	tokenService := devicetoken.NewTokenService(tokenRepository, dir, logger)
	tokenHandler := devicetoken.NewHandler(tokenService)

	eventHub := hub.NewHub(logger)
	hubHandler := hub.NewHandler(eventHub, logger)

	pushSender := buildPushSender(cfg, tokenService, logger)
	emailSender := buildEmailSender(cfg, dir, logger)
	smsSender := buildSmsSender(cfg, dir, logger)
	dispatcher := notify.NewDispatcher(eventHub, pushSender, emailSender, smsSender, logger)

	incidentRepository := incident.NewIncidentRepository(db.Collection("incidents"), db.Collection("incident_acknowledgements"))
	incidentService := incident.NewIncidentService(incidentRepository, seq, dir, dispatcher, logger)
	incidentHandler := incident.NewHandler(incidentService)

	alertService := alert.NewAlertService(dir, dispatcher, logger)
	alertHandler := alert.NewHandler(alertService)

	router := gin.Default()
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	incident.RegisterRoutes(router, incidentHandler, cfg.JWTSecret)
	devicetoken.RegisterRoutes(router, tokenHandler, cfg.JWTSecret)
	alert.RegisterRoutes(router, alertHandler, cfg.JWTSecret)
	hub.RegisterRoutes(router, hubHandler, cfg.JWTSecret)

	c := cron.New()
	if cfg.TokenRetentionDays > 0 {
		retention := time.Duration(cfg.TokenRetentionDays) * 24 * time.Hour
		if _, err := c.AddFunc("30 2 * * *", func() {
			swept, err := tokenService.SweepStale(context.Background(), retention)
			if err != nil {
				logger.Errorf("Device token sweep failed: %v", err)
				return
			}
			logger.Infof("Device token sweep deactivated %d stale tokens", swept)
		}); err != nil {
			logger.Fatalf("Failed to schedule token sweep: %v", err)
		}
	}
	c.Start()
	defer c.Stop()

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Infof("Server running on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Fatalf("Error shutting down server: %v", err)
	}
	logger.Info("Server stopped")
}

func buildPushSender(cfg *config.Config, tokens notify.TokenSource, logger *uberzap.SugaredLogger) notify.PushSender {
	if !cfg.UseFcmService {
		logger.Info("FCM disabled, using mock push sender")
		return notify.NewMockPushSender(logger)
	}
	_, messagingClient, err := firebase.SetUpFireBase(cfg.FcmCredentialsFile)
	if err != nil {
		logger.Errorf("Failed to initialize Firebase, falling back to mock push sender: %v", err)
		return notify.NewMockPushSender(logger)
	}
	return notify.NewFcmPushSender(messagingClient, tokens, logger)
}

func buildEmailSender(cfg *config.Config, dir notify.Directory, logger *uberzap.SugaredLogger) notify.EmailSender {
	if !cfg.UseEmailService {
		logger.Info("Email disabled, using mock email sender")
		return notify.NewMockEmailSender(logger)
	}
	return notify.NewSmtpEmailSender(cfg, dir, logger)
}

func buildSmsSender(cfg *config.Config, dir notify.Directory, logger *uberzap.SugaredLogger) notify.SmsSender {
	if !cfg.UseSmsService {
		logger.Info("SMS disabled, using mock SMS sender")
		return notify.NewMockSmsSender(logger)
	}
	return notify.NewHttpSmsSender(cfg, dir, logger)
}

func connectToMongoDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		log.Println("Failed to connect to MongoDB")
		return nil, err
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		log.Println("Failed to ping MongoDB")
		return nil, err
	}

	log.Println("Successfully connected to MongoDB")
	return client, nil
}
