package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Item wraps a serialized task event awaiting side-effect delivery.
type Item struct {
	ID        string          `json:"id"`
	Event     json.RawMessage `json:"event"`
	Retries   int             `json:"retries"`
	Timestamp time.Time       `json:"timestamp"`

	bucketKey []byte
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
}
