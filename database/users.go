package database

import (
	"context"
	"strings"

	"parkdesk/billing"
	"parkdesk/models"
)

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).Take(&u).Error
	if err != nil {
		return nil, notFoundOr(err, "user")
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		if isDuplicateKey(err) {
			return &billing.Error{Kind: billing.ErrState, Message: "user already exists", Err: err}
		}
		return billing.Storage("failed to create user", err)
	}
	return nil
}
