package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// TypeIncome marks income categories and records.
	TypeIncome = "income"
	// TypeExpense marks expense categories and records.
	TypeExpense = "expense"
)

// Category is a user-maintained income or expense tag.
type Category struct {
	ID        string         `json:"id" gorm:"primaryKey;size:36"`
	UserID    string         `json:"-" gorm:"size:36;index;not null"`
	Name      string         `json:"name" gorm:"size:50;not null"`
	Type      string         `json:"type" gorm:"size:10;not null;index"` // income | expense
	CreatedAt time.Time      `json:"-"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Category) TableName() string {
	return "categories"
}

// BeforeCreate assigns a uuid.
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// IsValidType reports whether t is income or expense.
func IsValidType(t string) bool {
	return t == TypeIncome || t == TypeExpense
}

// DefaultCategories are created for every new account.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Løn", Type: TypeIncome},
		{Name: "Bolig", Type: TypeExpense},
	}
}
