// Package queue contains the background consumer that listens to the
// match.events queue and writes one line per event to logs/match.log.
package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/bola-na-rede/internal/logger"
)

// StartMatchEventConsumer connects to RabbitMQ at url, declares the
// match.events queue (durable) and consumes it forever.  Each message is
// appended to <logDir>/match.log.  Broker failures trigger a reconnect with
// exponential backoff; a message that cannot be handled is rejected without
// requeue so the loop keeps going.
func StartMatchEventConsumer(url, logDir string) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			logger.Warn("match-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeLoop(conn, logDir); err != nil {
			logger.Warn("match-consumer: consume loop ended: %v; reconnecting", err)
			_ = conn.Close()
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, logDir string) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		logger.Warn("match-consumer: set QoS failed: %v", err)
	}
	if _, err := ch.QueueDeclare(MatchEventsQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(MatchEventsQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := HandleMessage(logDir, d.Body); err != nil {
			logger.Error("match-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

// HandleMessage decodes one MatchEvent and appends it to logDir/match.log.
func HandleMessage(logDir string, body []byte) error {
	var ev MatchEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" || ev.MatchID == 0 {
		return errors.New("event without type or match id")
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(logDir, "match.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatLine renders an event as a single human-friendly log line.
func FormatLine(ev MatchEvent) string {
	players := "[]"
	if len(ev.Roster) > 0 {
		players = fmt.Sprintf("[%s]", strings.Join(ev.Roster, ","))
	}
	actor := ev.ActorEmail
	if actor == "" {
		actor = "sweeper"
	}
	return fmt.Sprintf("[%s] %s | match_id=%d | name=%q | when=\"%s %s\" | cep=%s | venue=%q | organizer=%s | by=%s | rent=%s | per_person=%s | players=%s\n",
		ev.OccurredAt, ev.Type, ev.MatchID, ev.Name, ev.Date, ev.Time, ev.PostalCode, ev.VenueName,
		ev.OrganizerEmail, actor, ev.RentCost, ev.PerPersonCost, players)
}
