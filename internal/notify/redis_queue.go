package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisQueue implements Queue on top of a Redis list. This is the default
// durable backing: jobs survive process restarts and a separate worker
// binary can drain the same list.
type RedisQueue struct {
	client *redis.Client
	key    string
}

// NewRedisQueue creates a queue over the provided Redis client and list name.
func NewRedisQueue(client *redis.Client, name string) *RedisQueue {
	if client == nil {
		panic("notify: redis client cannot be nil")
	}
	if name == "" {
		name = "email-notifications"
	}
	return &RedisQueue{
		client: client,
		key:    "queue:" + name,
	}
}

// Send pushes a payload onto the head of the list.
func (q *RedisQueue) Send(ctx context.Context, body string) error {
	if err := q.client.LPush(ctx, q.key, body).Err(); err != nil {
		return fmt.Errorf("notify: failed to push redis message: %w", err)
	}
	return nil
}

// Receive pops from the tail, blocking up to waitSeconds for the first
// message and draining up to maxMessages without blocking after that.
func (q *RedisQueue) Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]QueueMessage, error) {
	if maxMessages <= 0 {
		maxMessages = 1
	}

	first, err := q.pop(ctx, time.Duration(waitSeconds)*time.Second)
	if err != nil {
		return nil, err
	}
	if first == nil {
		return nil, nil
	}

	messages := []QueueMessage{*first}
	for len(messages) < maxMessages {
		msg, err := q.pop(ctx, 0)
		if err != nil || msg == nil {
			break
		}
		messages = append(messages, *msg)
	}
	return messages, nil
}

// Delete is a no-op: popping from the list already removed the message.
func (q *RedisQueue) Delete(_ context.Context, _ string) error {
	return nil
}

func (q *RedisQueue) pop(ctx context.Context, wait time.Duration) (*QueueMessage, error) {
	var body string
	if wait > 0 {
		res, err := q.client.BRPop(ctx, wait, q.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return nil, nil
			}
			return nil, fmt.Errorf("notify: failed to pop redis message: %w", err)
		}
		// BRPOP returns [key, value].
		body = res[1]
	} else {
		res, err := q.client.RPop(ctx, q.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return nil, nil
			}
			return nil, fmt.Errorf("notify: failed to pop redis message: %w", err)
		}
		body = res
	}

	return &QueueMessage{
		ID:            uuid.NewString(),
		Body:          body,
		ReceiptHandle: "",
	}, nil
}

var _ Queue = (*RedisQueue)(nil)
