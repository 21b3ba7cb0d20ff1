package client

import (
	"context"
	"net/url"
)

// UserService wraps the /users endpoints and the admin role update.
type UserService struct {
	c *Client
}

func NewUserService(c *Client) *UserService {
	return &UserService{c: c}
}

// Profile returns the signed in user.
func (s *UserService) Profile(ctx context.Context) (*User, error) {
	var u User
	if err := s.c.get(ctx, "/users/profile", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile sends the changed profile fields.
func (s *UserService) UpdateProfile(ctx context.Context, upd ProfileUpdate) (*User, error) {
	var u User
	if err := s.c.patch(ctx, "/users/update-profile", upd, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// List returns every account. Admin only.
func (s *UserService) List(ctx context.Context) ([]User, error) {
	var users []User
	if err := s.c.get(ctx, "/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

type rolesRequest struct {
	Roles []string `json:"roles"`
}

// UpdateRoles replaces the roles of user id. Admin only.
func (s *UserService) UpdateRoles(ctx context.Context, id string, roles []string) (*User, error) {
	var u User
	endpoint := "/auth/admin/update-user-roles/" + url.PathEscape(id)
	if err := s.c.patch(ctx, endpoint, rolesRequest{Roles: roles}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
