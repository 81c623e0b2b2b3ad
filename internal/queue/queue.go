// Package queue provides asynchronous claim processing over AMQP. The
// publisher enqueues submitted claims; the consumer drains the queue one
// claim at a time and drives the report processing pipeline.
package queue

import (
	"errors"

	"github.com/google/uuid"
)

// Message is the wire format for a queued claim.
type Message struct {
	ClaimID uuid.UUID `json:"claim_id"`
}

// Sentinel errors for queue operations.
var (
	ErrNotConnected = errors.New("queue not connected")
	ErrBadMessage   = errors.New("malformed queue message")
)
