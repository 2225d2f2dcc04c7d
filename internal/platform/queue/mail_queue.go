package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rsih_portal/internal/domain/model"

	"github.com/redis/go-redis/v9"
)

// MailQueue holds credential emails that could not be delivered inline.
type MailQueue interface {
	Push(ctx context.Context, job model.MailJob) error
	// Pop blocks for up to timeout. It returns nil, nil when nothing arrived.
	Pop(ctx context.Context, timeout time.Duration) (*model.MailJob, error)
}

type redisMailQueue struct {
	rdb  *redis.Client
	name string
	ttl  time.Duration
}

// NewRedisMailQueue returns a Redis list backed queue. Jobs carry plaintext
// credentials, so every push refreshes a TTL on the list and an idle queue
// expires instead of keeping passwords around. A ttl <= 0 disables expiry.
func NewRedisMailQueue(rdb *redis.Client, name string, ttl time.Duration) MailQueue {
	return &redisMailQueue{rdb: rdb, name: name, ttl: ttl}
}

func (q *redisMailQueue) Push(ctx context.Context, job model.MailJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("redisMailQueue.Push marshal: %w", err)
	}
	_, err = q.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, q.name, payload)
		if q.ttl > 0 {
			pipe.Expire(ctx, q.name, q.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redisMailQueue.Push: %w", err)
	}
	return nil
}

func (q *redisMailQueue) Pop(ctx context.Context, timeout time.Duration) (*model.MailJob, error) {
	// result is [queueName, value]
	result, err := q.rdb.BRPop(ctx, timeout, q.name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redisMailQueue.Pop: %w", err)
	}
	if len(result) < 2 || result[1] == "" {
		return nil, nil
	}

	var job model.MailJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("redisMailQueue.Pop unmarshal: %w", err)
	}
	return &job, nil
}

// NopMailQueue drops jobs. It is used when Redis is not configured.
type NopMailQueue struct{}

func (NopMailQueue) Push(ctx context.Context, job model.MailJob) error {
	return errors.New("mail retry queue is not configured")
}

func (NopMailQueue) Pop(ctx context.Context, timeout time.Duration) (*model.MailJob, error) {
	return nil, nil
}
