package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"JWT_EXPIRATION_HOURS", "STORAGE_DRIVER", "REDIS_ADDR", "UPLOAD_MAX_MB", "TEAM_LIMIT_PER_COLLEGE", "MAIL_WORKER_IN_PROCESS", "MAIL_QUEUE_TTL_HOURS"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Setenv("SMTP_USER", "mailer@example.com")
	t.Setenv("MAIL_FROM", "")

	Load()

	assert.Equal(t, 2*time.Hour, AppConfig.JWTExp)
	assert.Equal(t, StorageDisk, AppConfig.StorageDriver)
	assert.Equal(t, int64(50<<20), AppConfig.UploadMaxBytes)
	assert.Equal(t, 15, AppConfig.TeamLimitPerCollege)
	assert.Equal(t, "mailer@example.com", AppConfig.MailFrom)
	assert.False(t, AppConfig.RedisEnabled())
	assert.True(t, AppConfig.MailWorkerInProcess)
	assert.Equal(t, 24*time.Hour, AppConfig.MailQueueTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "S3")
	t.Setenv("S3_FORCE_PATH_STYLE", "true")
	t.Setenv("TEAM_LIMIT_PER_COLLEGE", "3")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("DB_NAME", "portal_test")
	t.Setenv("MAIL_QUEUE_TTL_HOURS", "2")

	Load()

	assert.Equal(t, StorageS3, AppConfig.StorageDriver)
	assert.True(t, AppConfig.S3ForcePathStyle)
	assert.Equal(t, 3, AppConfig.TeamLimitPerCollege)
	assert.True(t, AppConfig.RedisEnabled())
	assert.Contains(t, AppConfig.DBConnStr, "dbname=portal_test")
	assert.Equal(t, 2*time.Hour, AppConfig.MailQueueTTL)
}
