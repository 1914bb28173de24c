package shop

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Item struct {
	SKU   string         `json:"sku"`
	Price float64        `json:"price"`
	Note  sql.NullString `json:"note"`
}

// Event is streamed by EventController
type Event struct {
	Kind string `json:"kind"`
}
