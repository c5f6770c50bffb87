// Package events defines the messages published when inventory records change.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/abgdnv/inventory/pkg/messaging"
)

type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// RecordSnapshot is the record state carried by an event. For deletions it is
// the record as it was before removal.
type RecordSnapshot struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type RecordChangedEvent struct {
	Kind       string         `json:"kind"`
	Action     Action         `json:"action"`
	Record     RecordSnapshot `json:"record"`
	Actor      string         `json:"actor"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Subject is inventory.<kind>.<action>.
func (e RecordChangedEvent) Subject() string {
	return fmt.Sprintf("%s.%s.%s", messaging.SubjectPrefix, e.Kind, e.Action)
}

func (e RecordChangedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

// AllSubjects matches every record event, for stream configuration.
func AllSubjects() string {
	return messaging.SubjectPrefix + ".>"
}
