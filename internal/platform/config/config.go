package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageDisk = "disk"
	StorageS3   = "s3"
)

type Config struct {
	APIPort string
	JWTKey  []byte
	JWTExp  time.Duration

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	// Redis is optional. An empty address turns off the catalog cache,
	// the login limiter and the credential mail retry queue.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	StorageDriver       string
	UploadDir           string
	UploadMaxBytes      int64
	S3Region            string
	S3Endpoint          string
	S3AccessKeyID       string
	S3SecretAccessKey   string
	S3ForcePathStyle    bool
	S3PublicBaseURL     string
	DocumentsBucket     string
	PresentationsBucket string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string

	TeamLimitPerCollege int
	CatalogCacheTTL     time.Duration
	LoginMaxAttempts    int
	LoginWindow         time.Duration
	MailQueueName       string
	MailMaxAttempts     int
	// MailQueueTTL bounds how long undelivered credentials stay in Redis.
	MailQueueTTL        time.Duration
	// MailWorkerInProcess runs the retry worker inside the API server.
	// Turn it off when cmd/worker runs separately.
	MailWorkerInProcess bool

	AdminName     string
	AdminEmail    string
	AdminPassword string
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = &Config{
		APIPort:    getEnv("API_PORT", "8080"),
		JWTKey:     []byte(getEnv("JWT_SECRET", "defaultsecret")),
		JWTExp:     time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 2)) * time.Hour,
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "user"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "rsih_portal"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		StorageDriver:       strings.ToLower(getEnv("STORAGE_DRIVER", StorageDisk)),
		UploadDir:           getEnv("UPLOAD_DIR", "uploads"),
		UploadMaxBytes:      int64(getEnvAsInt("UPLOAD_MAX_MB", 50)) << 20,
		S3Region:            getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:          getEnv("S3_ENDPOINT", ""),
		S3AccessKeyID:       getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey:   getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3ForcePathStyle:    getEnvAsBool("S3_FORCE_PATH_STYLE", false),
		S3PublicBaseURL:     getEnv("S3_PUBLIC_BASE_URL", ""),
		DocumentsBucket:     getEnv("DOCUMENTS_BUCKET", "spoc-documents"),
		PresentationsBucket: getEnv("PRESENTATIONS_BUCKET", "team-presentations"),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		MailFrom:     getEnv("MAIL_FROM", ""),

		TeamLimitPerCollege: getEnvAsInt("TEAM_LIMIT_PER_COLLEGE", 15),
		CatalogCacheTTL:     time.Duration(getEnvAsInt("CATALOG_CACHE_TTL_SECONDS", 300)) * time.Second,
		LoginMaxAttempts:    getEnvAsInt("LOGIN_MAX_ATTEMPTS", 10),
		LoginWindow:         time.Duration(getEnvAsInt("LOGIN_WINDOW_SECONDS", 900)) * time.Second,
		MailQueueName:       getEnv("MAIL_QUEUE_NAME", "credential_mail_queue"),
		MailMaxAttempts:     getEnvAsInt("MAIL_MAX_ATTEMPTS", 5),
		MailQueueTTL:        time.Duration(getEnvAsInt("MAIL_QUEUE_TTL_HOURS", 24)) * time.Hour,
		MailWorkerInProcess: getEnvAsBool("MAIL_WORKER_IN_PROCESS", true),

		AdminName:     getEnv("ADMIN_NAME", "Administrator"),
		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
	}

	if AppConfig.MailFrom == "" {
		AppConfig.MailFrom = AppConfig.SMTPUser
	}

	AppConfig.DBConnStr = "host=" + AppConfig.DBHost +
		" port=" + AppConfig.DBPort +
		" user=" + AppConfig.DBUser +
		" password=" + AppConfig.DBPassword +
		" dbname=" + AppConfig.DBName +
		" sslmode=" + AppConfig.DBSslMode
}

// RedisEnabled reports whether a Redis address was configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}
