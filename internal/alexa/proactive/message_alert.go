// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package proactive

import (
	"fmt"
	"time"
)

// MessageAlertEvent is the schema name of a message alert.
const MessageAlertEvent = "AMAZON.MessageAlert.Activated"

// Message alert states.
const (
	StatusUnread  = "UNREAD"
	StatusFlagged = "FLAGGED"

	FreshnessNew     = "NEW"
	FreshnessOverdue = "OVERDUE"
)

// MessageAlert announces a group of messages from one creator.
type MessageAlert struct {
	ReferenceID         string
	Timestamp           time.Time
	Expiry              time.Time
	Status              string
	Freshness           string
	CreatorName         string
	Count               int
	LocalizedAttributes []LocalizedAttribute
}

// MessageAlertPayload is the event payload of AMAZON.MessageAlert.Activated.
type MessageAlertPayload struct {
	State        MessageAlertState `json:"state"`
	MessageGroup MessageGroup      `json:"messageGroup"`
}

// MessageAlertState is the read state of the alert.
type MessageAlertState struct {
	Status    string `json:"status"`
	Freshness string `json:"freshness"`
}

// MessageGroup names the creator and message count.
type MessageGroup struct {
	Creator Creator `json:"creator"`
	Count   int     `json:"count"`
}

// Creator is the sender of a message group.
type Creator struct {
	Name string `json:"name"`
}

// Validate checks the enumerated fields.
func (m MessageAlert) Validate() error {
	switch m.Status {
	case StatusUnread, StatusFlagged:
	default:
		return fmt.Errorf("%w: status %q (want %s or %s)", ErrInvalidEvent, m.Status, StatusUnread, StatusFlagged)
	}
	switch m.Freshness {
	case FreshnessNew, FreshnessOverdue:
	default:
		return fmt.Errorf("%w: freshness %q (want %s or %s)", ErrInvalidEvent, m.Freshness, FreshnessNew, FreshnessOverdue)
	}
	if m.CreatorName == "" {
		return fmt.Errorf("%w: creator name is empty", ErrInvalidEvent)
	}
	if m.Count < 0 {
		return fmt.Errorf("%w: negative message count %d", ErrInvalidEvent, m.Count)
	}
	return nil
}

// Params converts the alert to generic event parameters.
func (m MessageAlert) Params() EventParams {
	return EventParams{
		Name: MessageAlertEvent,
		Payload: MessageAlertPayload{
			State:        MessageAlertState{Status: m.Status, Freshness: m.Freshness},
			MessageGroup: MessageGroup{Creator: Creator{Name: m.CreatorName}, Count: m.Count},
		},
		ReferenceID:         m.ReferenceID,
		Timestamp:           m.Timestamp,
		Expiry:              m.Expiry,
		LocalizedAttributes: m.LocalizedAttributes,
	}
}
