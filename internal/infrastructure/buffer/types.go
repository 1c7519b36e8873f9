package buffer

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EntityPushToken = "push_token"

	OperationRegister = "register"
)

// Item is a best-effort operation kept for retry after its first attempt failed.
type Item struct {
	ID        string          `json:"id"`
	AccountID string          `json:"account_id"`
	Entity    string          `json:"entity"`
	Operation string          `json:"operation"`
	Data      json.RawMessage `json:"data"`
	Priority  int             `json:"priority"`
	Retries   int             `json:"retries"`
	Timestamp time.Time       `json:"timestamp"`

	bucketKey []byte
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Priority <= 0 || i.Priority > 5 {
		i.Priority = 3
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
}

// NewItem marshals payload into an item for accountID.
func NewItem(accountID, entity, operation string, payload interface{}) (Item, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Item{}, err
	}
	return Item{
		AccountID: accountID,
		Entity:    entity,
		Operation: operation,
		Data:      data,
	}, nil
}

// Decode unmarshals the item payload into dst.
func (i Item) Decode(dst interface{}) error {
	return json.Unmarshal(i.Data, dst)
}
