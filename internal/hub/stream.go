// Package hub fans live game snapshots out to spectator WebSocket
// connections.  The write path publishes each fresh snapshot to a
// Redis stream; the consumer side reads the stream and broadcasts to
// every connection subscribed to that game.  Going through Redis
// rather than process memory lets several service instances feed the
// same spectators.
package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/courtside/scorekeeper/internal/model"
)

// LiveStreamKey is the Redis stream carrying snapshots of all games;
// each entry names its game so consumers can filter.
const LiveStreamKey = "games.live"

// maxStreamLen bounds the stream so it behaves as a recent-history
// buffer, not durable storage.
const maxStreamLen = 1024

// StreamPublisher publishes game snapshots to the live stream.  It
// satisfies the service layer's LivePublisher interface.
type StreamPublisher struct {
	client *redis.Client
}

// NewStreamPublisher returns a publisher over the given Redis client.
func NewStreamPublisher(client *redis.Client) *StreamPublisher {
	return &StreamPublisher{client: client}
}

// PublishSnapshot appends the snapshot to the live stream.
func (p *StreamPublisher) PublishSnapshot(ctx context.Context, g *model.Game) error {
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}
	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: LiveStreamKey,
		MaxLen: maxStreamLen,
		Approx: true,
		Values: map[string]interface{}{
			"game_id": strconv.FormatUint(g.ID, 10),
			"data":    string(data),
		},
	}).Err()
}

// ConsumeStream tails the live stream from now on and hands every
// entry to the hub for broadcast.  It blocks until ctx is cancelled,
// logging and continuing on transient Redis errors.
func ConsumeStream(ctx context.Context, client *redis.Client, h *Hub) {
	lastID := "$"
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		res, err := client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{LiveStreamKey, lastID},
			Count:   64,
			Block:   5 * time.Second,
		}).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("live stream read failed: %v", err)
			time.Sleep(time.Second)
			continue
		}
		for _, stream := range res {
			for _, entry := range stream.Messages {
				lastID = entry.ID
				gameID, data, ok := parseEntry(entry)
				if !ok {
					continue
				}
				h.Broadcast(gameID, data)
			}
		}
	}
}

func parseEntry(entry redis.XMessage) (uint64, []byte, bool) {
	idStr, _ := entry.Values["game_id"].(string)
	data, _ := entry.Values["data"].(string)
	gameID, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || data == "" {
		return 0, nil, false
	}
	return gameID, []byte(data), true
}
