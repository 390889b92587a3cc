package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JSONB is a custom type for JSON columns (jsonb on postgres, text on sqlite)
type JSONB map[string]interface{}

// Value implements the driver.Valuer interface
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	data, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements the sql.Scanner interface
func (j *JSONB) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*j = nil
		return nil
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return errors.New("type assertion to []byte failed")
	}
}

// Notification is a queued event for the store notification sink. ReadyAt is
// a unix timestamp in milliseconds.
type Notification struct {
	ID        string    `json:"id" gorm:"primary_key"`
	StoreID   int64     `json:"store_id" gorm:"not null;index"`
	Attempts  int       `json:"attempts" gorm:"not null;default:0"`
	ReadyAt   int64     `json:"ready_at" gorm:"not null;index"`
	Payload   JSONB     `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return nil
}
