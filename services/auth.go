package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"parkdesk/billing"
	"parkdesk/models"
	"parkdesk/utils"
)

// ErrInvalidCredentials is returned by Login for an unknown email or a wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Login checks an admin's password and returns the account.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, billing.Validation("email and password are required")
	}

	user, err := s.store.FindUserByEmail(ctx, email)
	if errors.Is(err, billing.ErrNotFound) {
		s.log.WithField("email", email).Warn("login for unknown user")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		s.log.WithField("email", email).Warn("login with wrong password")
		return nil, ErrInvalidCredentials
	}

	s.log.WithFields(logrus.Fields{"email": user.Email, "role": user.SessionRole()}).Info("admin logged in")
	return user, nil
}

// EnsureAdmin creates the seed admin unless an account with that email exists.
func (s *Service) EnsureAdmin(ctx context.Context, email, password, role string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil
	}

	_, err := s.store.FindUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, billing.ErrNotFound) {
		return err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	if role != models.RoleSuperAdmin {
		role = models.RoleAdmin
	}
	user := &models.User{Email: email, Password: hash, Role: role}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, billing.ErrState) {
			// Another instance seeded the same account first.
			return nil
		}
		return err
	}
	s.log.WithFields(logrus.Fields{"email": user.Email, "role": role}).Info("seed admin created")
	return nil
}
