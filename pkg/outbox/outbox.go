// Package outbox implements the transactional outbox: events are written in
// the same transaction as the state change and published later by a Relay.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dwikikusuma/shoping-cart/pkg/postgres"
	"github.com/google/uuid"
)

type Event struct {
	EventID   string          `json:"event_id"`
	Topic     string          `json:"topic"`
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

type Record struct {
	ID int64 `json:"id"`
	Event
	SentAt *time.Time `json:"sent_at"`
}

func NewEvent(topic, key string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", topic, err)
	}
	return Event{
		EventID:   uuid.NewString(),
		Topic:     topic,
		Key:       key,
		Payload:   data,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// PGStore reads and writes the outbox table. Pass a pgx.Tx as db to enqueue
// inside a business transaction.
type PGStore struct {
	db postgres.DBTX
}

func NewPGStore(db postgres.DBTX) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Insert(ctx context.Context, evt Event) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO outbox(event_id, topic, key, payload, created_at) VALUES ($1, $2, $3, $4, $5)`,
		evt.EventID, evt.Topic, evt.Key, []byte(evt.Payload), evt.CreatedAt,
	)
	return err
}

func (s *PGStore) MarkSent(ctx context.Context, id int64) error {
	_, err := s.db.Exec(ctx, `UPDATE outbox SET sent_at=now() WHERE id=$1`, id)
	return err
}

func (s *PGStore) FetchPending(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, event_id, topic, key, payload, created_at, sent_at FROM outbox WHERE sent_at IS NULL ORDER BY id LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var payload []byte
		if err := rows.Scan(&rec.ID, &rec.EventID, &rec.Topic, &rec.Key, &payload, &rec.CreatedAt, &rec.SentAt); err != nil {
			return nil, err
		}
		rec.Payload = payload
		out = append(out, rec)
	}
	return out, rows.Err()
}
