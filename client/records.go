package client

import (
	"context"
	"net/url"
)

// RecordService is the accessor of one transaction resource, /income or
// /expense. Both share the same shape.
type RecordService struct {
	c        *Client
	resource string
}

// NewIncomeService returns the /income accessor.
func NewIncomeService(c *Client) *RecordService {
	return &RecordService{c: c, resource: TypeIncome}
}

// NewExpenseService returns the /expense accessor.
func NewExpenseService(c *Client) *RecordService {
	return &RecordService{c: c, resource: TypeExpense}
}

// Kind is "income" or "expense".
func (s *RecordService) Kind() string {
	return s.resource
}

func (s *RecordService) path(id string) string {
	if id == "" {
		return "/" + s.resource
	}
	return "/" + s.resource + "/" + url.PathEscape(id)
}

// ListMine returns the caller's records.
func (s *RecordService) ListMine(ctx context.Context) ([]Record, error) {
	var out []Record
	if err := s.c.get(ctx, s.path("me"), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// List returns the records of all users. Admin only.
func (s *RecordService) List(ctx context.Context) ([]Record, error) {
	var out []Record
	if err := s.c.get(ctx, s.path(""), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *RecordService) Get(ctx context.Context, id string) (*Record, error) {
	var r Record
	if err := s.c.get(ctx, s.path(id), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *RecordService) Create(ctx context.Context, in RecordCreate) (*Record, error) {
	var r Record
	if err := s.c.post(ctx, s.path(""), in, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Update sends a partial update built with DiffRecord.
func (s *RecordService) Update(ctx context.Context, id string, upd RecordUpdate) (*Record, error) {
	var r Record
	if err := s.c.patch(ctx, s.path(id), upd, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *RecordService) Delete(ctx context.Context, id string) error {
	return s.c.delete(ctx, s.path(id))
}

// ExportCSV downloads the caller's records dated from start to end
// (YYYY-MM-DD, inclusive) as CSV.
func (s *RecordService) ExportCSV(ctx context.Context, start, end string) ([]byte, error) {
	q := url.Values{"start": {start}, "end": {end}}
	var raw []byte
	if err := s.c.get(ctx, s.path("export")+"?"+q.Encode(), &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
