package queue

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartPlayByPlayConsumer connects to RabbitMQ, declares the durable
// game.events queue and consumes it, appending one human-readable line
// per message to logs/playbyplay.log.  It runs a reconnect loop with
// exponential backoff and keeps the server operating through broker
// outages; malformed messages are rejected without requeue so they
// cannot wedge the queue.
func StartPlayByPlayConsumer() error {
	url := brokerURL()

	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("pbp-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn); err != nil {
			log.Printf("pbp-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection) error {
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("pbp-consumer: set QoS failed: %v", err)
	}

	if _, err := ch.QueueDeclare(EventQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(EventQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body); err != nil {
			log.Printf("pbp-consumer: handle message failed: %v", err)
			_ = d.Reject(false)
			continue
		}
		_ = d.Ack(false)
	}
	return fmt.Errorf("delivery channel closed")
}

func handleMessage(body []byte) error {
	var msg GameEventMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return appendPlayByPlay(formatLine(msg))
}

// formatLine renders one message as a single play-by-play line, e.g.
//  game 7 Q3 04:12.8 | SHOT player=23 made 3pt | 55-52
func formatLine(msg GameEventMessage) string {
	var b strings.Builder
	mins := int(msg.GameClockSeconds) / 60
	secs := msg.GameClockSeconds - float64(mins*60)
	fmt.Fprintf(&b, "game %d Q%d %02d:%04.1f | ", msg.GameID, msg.Quarter, mins, secs)
	if msg.Reversal {
		b.WriteString("UNDO ")
	}
	b.WriteString(string(msg.Type))
	if msg.PlayerID != nil {
		fmt.Fprintf(&b, " player=%d", *msg.PlayerID)
	} else {
		fmt.Fprintf(&b, " team=%d", msg.TeamID)
	}
	if msg.Detail.Made != nil {
		if *msg.Detail.Made {
			b.WriteString(" made")
		} else {
			b.WriteString(" missed")
		}
		if msg.Detail.PointValue > 0 {
			fmt.Fprintf(&b, " %dpt", msg.Detail.PointValue)
		}
	}
	if msg.Detail.FoulKind != "" {
		fmt.Fprintf(&b, " %s", msg.Detail.FoulKind)
	}
	fmt.Fprintf(&b, " | %d-%d", msg.HomeScore, msg.AwayScore)
	return b.String()
}

func appendPlayByPlay(line string) error {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join("logs", "playbyplay.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	_, err = fmt.Fprintf(f, "%s %s\n", time.Now().UTC().Format(time.RFC3339), line)
	return err
}
