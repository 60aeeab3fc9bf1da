package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// boardLogFile is the journal file inside the consumer's log directory.
const boardLogFile = "board.log"

// Consumer reads board.events and appends one line per event to
// <LogDir>/board.log.
type Consumer struct {
	URL    string
	LogDir string
	Log    *zap.Logger
}

// Run keeps a consumer attached to the broker until ctx is cancelled,
// reconnecting with exponential backoff capped at 30s.  Bad messages are
// rejected without requeue so the loop keeps going.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Log.Warn("board consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Log.Warn("board consumer: loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.Log.Warn("board consumer: set QoS failed", zap.Error(err))
	}
	if _, err := ch.QueueDeclare(BoardQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, BoardQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := c.HandleMessage(d.Body); err != nil {
			c.Log.Error("board consumer: handle message failed", zap.Error(err))
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

// HandleMessage decodes one event and appends its journal line.
func (c *Consumer) HandleMessage(body []byte) error {
	var ev BoardEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" {
		return errors.New("event without type")
	}
	dir := c.LogDir
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	f, err := os.OpenFile(filepath.Join(dir, boardLogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatLine renders ev as a single human readable journal line.
func FormatLine(ev BoardEvent) string {
	line := fmt.Sprintf("[%s] %s | event_id=%s", ev.OccurredAt, ev.Type, ev.EventID)
	switch ev.Type {
	case TypeReservationCreated, TypeReservationCancelled:
		line += fmt.Sprintf(" | reservation_id=%d | program=%q | time=%q | name=%q | people=%d",
			ev.ReservationID, ev.Program, ev.EffectiveTime, ev.Name, ev.People)
	case TypeReservationsPurged, TypeBoardReset:
		line += fmt.Sprintf(" | count=%d", ev.Count)
	case TypeProgramToggled:
		line += fmt.Sprintf(" | program=%q | disabled=%t", ev.Program, ev.Disabled != nil && *ev.Disabled)
	case TypeTimeToggled:
		line += fmt.Sprintf(" | time=%q | disabled=%t", ev.EffectiveTime, ev.Disabled != nil && *ev.Disabled)
	}
	return line + "\n"
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
