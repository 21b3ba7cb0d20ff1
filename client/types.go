package client

import (
	"slices"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire format of record dates.
const DateLayout = "2006-01-02"

// Record types and category types.
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// Roles known to the admin editor.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is an account as returned by /users.
type User struct {
	ID         string   `json:"id"`
	Email      string   `json:"email"`
	FirstName  string   `json:"firstName"`
	LastName   string   `json:"lastName"`
	Roles      []string `json:"roles"`
	Phone      *string  `json:"phone,omitempty"`
	Address    *string  `json:"address,omitempty"`
	BirthDate  *string  `json:"birthDate,omitempty"`
	PictureURL *string  `json:"pictureUrl,omitempty"`
}

// HasRole reports whether the user holds role.
func (u User) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}

// IsAdmin reports the admin role.
func (u User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// FullName joins first and last name, falling back to the email.
func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// Category is an income or expense tag.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Record is an income or expense entry. Amount is a decimal string.
type Record struct {
	ID          string   `json:"id"`
	Amount      string   `json:"amount"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
}

// Value parses Amount; an unparseable amount counts as 0.
func (r Record) Value() float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(r.Amount), 64)
	if err != nil {
		return 0
	}
	return v
}

// Time parses Date. Full timestamps are cut to their date part.
func (r Record) Time() (time.Time, bool) {
	d := strings.TrimSpace(r.Date)
	if len(d) > len(DateLayout) {
		d = d[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, d)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// RecordCreate is the body of POST /income and POST /expense.
type RecordCreate struct {
	Amount      float64 `json:"amount"`
	CategoryID  string  `json:"categoryId"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
}

// RecordUpdate is a partial update; nil fields are not sent.
type RecordUpdate struct {
	Amount      *float64 `json:"amount,omitempty"`
	CategoryID  *string  `json:"categoryId,omitempty"`
	Description *string  `json:"description,omitempty"`
	Date        *string  `json:"date,omitempty"`
}

// Empty reports an update without changes.
func (u RecordUpdate) Empty() bool {
	return u.Amount == nil && u.CategoryID == nil && u.Description == nil && u.Date == nil
}

// CategoryCreate is the body of POST /category.
type CategoryCreate struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// CategoryUpdate is a partial category update.
type CategoryUpdate struct {
	Name *string `json:"name,omitempty"`
	Type *string `json:"type,omitempty"`
}

// Empty reports an update without changes.
func (u CategoryUpdate) Empty() bool {
	return u.Name == nil && u.Type == nil
}

// ProfileUpdate is a partial profile update.
type ProfileUpdate struct {
	FirstName  *string `json:"firstName,omitempty"`
	LastName   *string `json:"lastName,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Address    *string `json:"address,omitempty"`
	BirthDate  *string `json:"birthDate,omitempty"`
	PictureURL *string `json:"pictureUrl,omitempty"`
}

// Empty reports an update without changes.
func (u ProfileUpdate) Empty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Phone == nil &&
		u.Address == nil && u.BirthDate == nil && u.PictureURL == nil
}

// ContextData is the record context of a contextual completion. Records
// are sent as returned by the backend.
type ContextData struct {
	Expenses []Record `json:"expenses,omitempty"`
	Income   []Record `json:"income,omitempty"`
}
