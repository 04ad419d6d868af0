package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	AWSRegion             string
	SQSPlateEventQueueURL string
	IoTMQTTEndpoint       string

	EntryCameraURL    string
	ExitCameraURL     string
	DetectorEndpoint  string
	DetectionCooldown time.Duration

	CaptureDir      string
	DetectionLogDir string

	JWTSecret     string
	JWTExpiration time.Duration
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	cooldownSeconds, _ := strconv.Atoi(getEnv("DETECTION_COOLDOWN_SECONDS", "5"))
	jwtExpHours, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     dbPort,
		DBUser:     getEnv("DB_USER", "gate"),
		DBPassword: getEnv("DB_PASSWORD", "gate"),
		DBName:     getEnv("DB_NAME", "gate_access"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),

		AWSRegion:             getEnv("AWS_REGION", "ap-southeast-1"),
		SQSPlateEventQueueURL: getEnv("SQS_PLATE_EVENT_QUEUE_URL", ""),
		IoTMQTTEndpoint:       getEnv("IOT_MQTT_ENDPOINT", ""),

		EntryCameraURL:    getEnv("ENTRY_CAMERA_URL", ""),
		ExitCameraURL:     getEnv("EXIT_CAMERA_URL", ""),
		DetectorEndpoint:  getEnv("DETECTOR_ENDPOINT", "http://localhost:9090/detect"),
		DetectionCooldown: time.Duration(cooldownSeconds) * time.Second,

		CaptureDir:      getEnv("CAPTURE_DIR", "Captured Image"),
		DetectionLogDir: getEnv("DETECTION_LOG_DIR", "HasilDeteksi"),

		JWTSecret:     getEnv("JWT_SECRET", "change-me"),
		JWTExpiration: time.Duration(jwtExpHours) * time.Hour,
	}
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable '%s' not set, using default: '%s'", key, fallback)
	return fallback
}
