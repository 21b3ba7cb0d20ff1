package models

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DateLayout is the wire format of transaction dates.
const DateLayout = "2006-01-02"

// Transaction is an income or expense record. Both kinds share one table and
// are served by separate endpoints.
type Transaction struct {
	ID          string         `gorm:"primaryKey;size:36"`
	UserID      string         `gorm:"size:36;index;not null"`
	Kind        string         `gorm:"size:10;index;not null"` // income | expense
	Amount      float64        `gorm:"type:decimal(12,2);not null"`
	CategoryID  string         `gorm:"size:36;index;not null"`
	Category    Category       `gorm:"foreignKey:CategoryID"`
	Description string         `gorm:"size:255"`
	Date        time.Time      `gorm:"type:date;not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// BeforeCreate assigns a uuid.
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

type transactionJSON struct {
	ID          string   `json:"id"`
	Amount      string   `json:"amount"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
}

// MarshalJSON renders the record with the amount as a decimal string and a bare date.
func (t Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(transactionJSON{
		ID:          t.ID,
		Amount:      FormatAmount(t.Amount),
		Category:    t.Category,
		Description: t.Description,
		Date:        t.Date.Format(DateLayout),
	})
}

// FormatAmount formats a currency value with two decimals.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
