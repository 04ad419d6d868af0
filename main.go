package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"gate_access/internal/anpr"
	"gate_access/internal/api"
	"gate_access/internal/api/handler"
	"gate_access/internal/api/middleware"
	"gate_access/internal/config"
	"gate_access/internal/domain"
	"gate_access/internal/iot"
	"gate_access/internal/repository/postgresql"
	"gate_access/internal/service"
	"gate_access/internal/vision"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsgo_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/iotdataplane"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

func main() {
	// 1. Load configuration
	cfg := config.Load()

	// 2. Database connection
	db, err := postgresql.NewDB(cfg)
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to database.")

	// 3. AWS SDK config (Rekognition OCR, SQS plate events, IoT barrier commands)
	awsSDKCfg, err := awsgo_config.LoadDefaultConfig(context.TODO(), awsgo_config.WithRegion(cfg.AWSRegion))
	if err != nil {
		log.Fatalf("Could not load AWS SDK config: %v", err)
	}

	rekognitionClient := rekognition.NewFromConfig(awsSDKCfg)
	recognizer := vision.NewRekognitionRecognizer(rekognitionClient)

	var gateController *iot.GateController
	if cfg.IoTMQTTEndpoint != "" {
		iotDataPlaneClient := iotdataplane.NewFromConfig(awsSDKCfg, func(o *iotdataplane.Options) {
			endpoint := cfg.IoTMQTTEndpoint
			if !strings.HasPrefix(endpoint, "https://") && !strings.HasPrefix(endpoint, "http://") {
				endpoint = "https://" + endpoint
			}
			o.BaseEndpoint = aws.String(endpoint)
		})
		gateController = iot.NewGateController(iotDataPlaneClient)
		log.Println("IoT gate controller enabled.")
	}

	// 4. Repositories
	userRepo := postgresql.NewPgUserRepository(db)
	memberRepo := postgresql.NewPgMemberRepository(db)
	accessLogRepo := postgresql.NewPgAccessLogRepository(db)
	sessionRepo := postgresql.NewPgVehicleSessionRepository(db)

	// 5. WebSocket manager for dashboard notifications
	wsManager := handler.NewWebSocketManager()
	go wsManager.Start()

	// 6. Access recorder shared by all pipelines and the SQS consumer
	var gate anpr.GateOpener
	if gateController != nil {
		gate = gateController
	}
	recorder := anpr.NewAccessRecorder(memberRepo, accessLogRepo, sessionRepo,
		cfg.CaptureDir, cfg.DetectionLogDir, wsManager, gate)

	// 7. Camera pipelines, one per configured camera
	detector := vision.NewHTTPDetector(cfg.DetectorEndpoint)
	pipelineCtx, cancelPipelines := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	var pipelines []*anpr.CameraPipeline
	cameras := map[domain.CameraRole]string{
		domain.RoleEntry: cfg.EntryCameraURL,
		domain.RoleExit:  cfg.ExitCameraURL,
	}
	for role, url := range cameras {
		if url == "" {
			log.Printf("No camera configured for %s gate, pipeline disabled.", role)
			continue
		}
		source, err := vision.OpenMJPEG(url)
		if err != nil {
			log.Printf("Could not open %s camera: %v. Pipeline disabled.", role, err)
			continue
		}
		pipeline := anpr.NewCameraPipeline(role, source, detector, recognizer, recorder, cfg.DetectionCooldown)
		pipelines = append(pipelines, pipeline)

		wg.Add(1)
		go func(p *anpr.CameraPipeline) {
			defer wg.Done()
			if err := p.Run(pipelineCtx); err != nil {
				log.Printf("Pipeline exited: %v", err)
			}
		}(pipeline)
	}

	// 8. SQS consumer for remote plate events
	if cfg.SQSPlateEventQueueURL != "" {
		sqsClient := sqs.NewFromConfig(awsSDKCfg)
		consumer := iot.NewSQSConsumer(sqsClient, cfg, recorder)
		wg.Add(1)
		go func() {
			defer wg.Done()
			consumer.Start(pipelineCtx)
		}()
	} else {
		log.Println("SQS_PLATE_EVENT_QUEUE_URL not configured, remote plate events disabled.")
	}

	// 9. Services and HTTP API
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiration)
	memberService := service.NewMemberService(memberRepo)

	statusProviders := make([]service.PipelineStatusProvider, 0, len(pipelines))
	for _, p := range pipelines {
		statusProviders = append(statusProviders, p)
	}
	monitorService := service.NewMonitorService(statusProviders, accessLogRepo, sessionRepo, cfg.CaptureDir)

	authMiddleware := middleware.NewAuthMiddleware(authService)
	router := api.SetupRouter(authService, memberService, monitorService, authMiddleware, wsManager)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server listening on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	for _, p := range pipelines {
		p.Stop()
	}
	cancelPipelines()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shut down: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		wg.Wait()
	}()
	select {
	case <-done:
		log.Println("All pipelines stopped.")
	case <-time.After(5 * time.Second):
		log.Println("Timed out waiting for pipelines to stop.")
	}

	log.Println("Server stopped.")
}
