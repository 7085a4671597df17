package feed

import (
	"context"
	"encoding/json"
	"fmt"

	"skillbridge/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const channelPrefix = "engagements:party:"

func partyChannel(partyID string) string {
	return channelPrefix + partyID
}

// RedisChangeFeed fans engagement changes out over Redis pub/sub, one channel per party.
type RedisChangeFeed struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisChangeFeed(client *redis.Client, logger *zap.Logger) *RedisChangeFeed {
	return &RedisChangeFeed{client: client, logger: logger}
}

// Publish sends change to every party of the engagement.
func (f *RedisChangeFeed) Publish(ctx context.Context, change models.EngagementChange) error {
	data, err := json.Marshal(change)
	if err != nil {
		return err
	}
	for _, party := range change.Parties {
		if party == "" {
			continue
		}
		if err := f.client.Publish(ctx, partyChannel(party), data).Err(); err != nil {
			return fmt.Errorf("publish to %s: %w", party, err)
		}
	}
	return nil
}

// Subscribe streams changes for partyID until ctx is done. The returned
// channel is closed when the subscription ends.
func (f *RedisChangeFeed) Subscribe(ctx context.Context, partyID string) (<-chan models.EngagementChange, error) {
	sub := f.client.Subscribe(ctx, partyChannel(partyID))
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", partyID, err)
	}

	out := make(chan models.EngagementChange, 16)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var change models.EngagementChange
				if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
					f.logger.Warn("dropping malformed change", zap.String("channel", msg.Channel), zap.Error(err))
					continue
				}
				select {
				case out <- change:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
