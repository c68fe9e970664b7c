package models

import (
	"encoding/json"
	"time"
)

// OutboxTask is a side effect queued in the same transaction as the record
// that caused it and delivered later by the outbox worker.
type OutboxTask struct {
	ID          int64      `json:"id"`
	TaskType    string     `json:"task_type"`
	BookingID   string     `json:"booking_id"`
	Payload     string     `json:"payload"`
	Status      string     `json:"status"`
	RetryCount  int        `json:"retry_count"`
	LastError   *string    `json:"last_error"`
	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at"`
	NextRetryAt *time.Time `json:"next_retry_at"`
}

// OutboxPayload is the JSON stored in OutboxTask.Payload. It carries a
// booking snapshot so delivery works after the booking row is gone.
type OutboxPayload struct {
	Booking *Booking `json:"booking,omitempty"`
	EventID string   `json:"event_id,omitempty"`
}

func NewOutboxTask(taskType string, b *Booking) (*OutboxTask, error) {
	payload := OutboxPayload{Booking: b}
	if b != nil {
		payload.EventID = b.GoogleEventID
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	task := &OutboxTask{TaskType: taskType, Payload: string(raw), Status: TaskStatusPending}
	if b != nil {
		task.BookingID = b.ID
	}
	return task, nil
}

func (t *OutboxTask) DecodePayload() (OutboxPayload, error) {
	var p OutboxPayload
	if t.Payload == "" {
		return p, nil
	}
	err := json.Unmarshal([]byte(t.Payload), &p)
	return p, err
}
