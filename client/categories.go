package client

import (
	"context"
	"net/url"
)

// CategoryService wraps /category.
type CategoryService struct {
	c *Client
}

func NewCategoryService(c *Client) *CategoryService {
	return &CategoryService{c: c}
}

func (s *CategoryService) List(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := s.c.get(ctx, "/category", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByType returns the categories of one type.
func (s *CategoryService) ListByType(ctx context.Context, typ string) ([]Category, error) {
	var out []Category
	if err := s.c.get(ctx, "/category?type="+url.QueryEscape(typ), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *CategoryService) Get(ctx context.Context, id string) (*Category, error) {
	var cat Category
	if err := s.c.get(ctx, "/category/"+url.PathEscape(id), &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (s *CategoryService) Create(ctx context.Context, in CategoryCreate) (*Category, error) {
	var cat Category
	if err := s.c.post(ctx, "/category", in, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (s *CategoryService) Update(ctx context.Context, id string, upd CategoryUpdate) (*Category, error) {
	var cat Category
	if err := s.c.patch(ctx, "/category/"+url.PathEscape(id), upd, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

// Delete removes the category. Records that use it are not checked.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	return s.c.delete(ctx, "/category/"+url.PathEscape(id))
}
