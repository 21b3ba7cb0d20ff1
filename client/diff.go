package client

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RecordForm is a submitted record form, all fields as typed by the user.
type RecordForm struct {
	Amount      string
	CategoryID  string
	Description string
	Date        string
}

// Validation errors of RecordForm.
var (
	ErrInvalidAmount = errors.New("amount must be a number greater than 0")
	ErrNoCategory    = errors.New("category is required")
	ErrInvalidDate   = errors.New("date must be formatted as YYYY-MM-DD")
)

func (f RecordForm) amount() (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(f.Amount), 64)
	if err != nil || v <= 0 {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

func (f RecordForm) date() (string, error) {
	d := strings.TrimSpace(f.Date)
	if _, err := time.Parse(DateLayout, d); err != nil {
		return "", ErrInvalidDate
	}
	return d, nil
}

// Create validates the form into a create body.
func (f RecordForm) Create() (RecordCreate, error) {
	amount, err := f.amount()
	if err != nil {
		return RecordCreate{}, err
	}
	if strings.TrimSpace(f.CategoryID) == "" {
		return RecordCreate{}, ErrNoCategory
	}
	date, err := f.date()
	if err != nil {
		return RecordCreate{}, err
	}
	return RecordCreate{
		Amount:      amount,
		CategoryID:  strings.TrimSpace(f.CategoryID),
		Description: strings.TrimSpace(f.Description),
		Date:        date,
	}, nil
}

// FormOf fills a form with the values of r.
func FormOf(r Record) RecordForm {
	date := r.Date
	if t, ok := r.Time(); ok {
		date = t.Format(DateLayout)
	}
	return RecordForm{
		Amount:      r.Amount,
		CategoryID:  r.Category.ID,
		Description: r.Description,
		Date:        date,
	}
}

// DiffRecord compares the submitted form with the original record and
// returns only the fields that changed. Amounts compare numerically so
// "100" and "100.00" are equal.
func DiffRecord(orig Record, form RecordForm) (RecordUpdate, error) {
	var upd RecordUpdate

	amount, err := form.amount()
	if err != nil {
		return upd, err
	}
	if amount != orig.Value() {
		upd.Amount = &amount
	}

	if cat := strings.TrimSpace(form.CategoryID); cat != "" && cat != orig.Category.ID {
		upd.CategoryID = &cat
	}

	if desc := strings.TrimSpace(form.Description); desc != orig.Description {
		upd.Description = &desc
	}

	date, err := form.date()
	if err != nil {
		return upd, err
	}
	if t, ok := orig.Time(); !ok || t.Format(DateLayout) != date {
		upd.Date = &date
	}
	return upd, nil
}

// ProfileForm is a submitted profile form.
type ProfileForm struct {
	FirstName  string
	LastName   string
	Phone      string
	Address    string
	BirthDate  string
	PictureURL string
}

// DiffProfile returns the changed profile fields. An emptied optional field
// is sent as "" which clears it.
func DiffProfile(orig User, form ProfileForm) (ProfileUpdate, error) {
	var upd ProfileUpdate
	changed := func(dst **string, old *string, val string) {
		val = strings.TrimSpace(val)
		cur := ""
		if old != nil {
			cur = *old
		}
		if val != cur {
			*dst = &val
		}
	}

	changed(&upd.FirstName, &orig.FirstName, form.FirstName)
	changed(&upd.LastName, &orig.LastName, form.LastName)
	changed(&upd.Phone, orig.Phone, form.Phone)
	changed(&upd.Address, orig.Address, form.Address)
	changed(&upd.PictureURL, orig.PictureURL, form.PictureURL)

	if bd := strings.TrimSpace(form.BirthDate); bd != "" {
		if _, err := time.Parse(DateLayout, bd); err != nil {
			return upd, fmt.Errorf("birth date: %w", ErrInvalidDate)
		}
	}
	changed(&upd.BirthDate, orig.BirthDate, form.BirthDate)
	return upd, nil
}

// DiffCategory returns the changed category fields.
func DiffCategory(orig Category, name, typ string) CategoryUpdate {
	var upd CategoryUpdate
	if name = strings.TrimSpace(name); name != "" && name != orig.Name {
		upd.Name = &name
	}
	if typ = strings.TrimSpace(typ); typ != "" && typ != orig.Type {
		upd.Type = &typ
	}
	return upd
}
