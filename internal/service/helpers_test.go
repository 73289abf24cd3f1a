package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/mkasimov/shop-system/internal/auth"
	"github.com/mkasimov/shop-system/internal/model"
	"github.com/mkasimov/shop-system/internal/repository"
)

func newTestService(t *testing.T) (*Service, *repository.MemoryRepository) {
	t.Helper()

	tokens, err := auth.NewTokenManager("test-secret", 30*time.Minute)
	require.NoError(t, err)

	repo := repository.NewSeededMemoryRepository()
	return NewService(repo, tokens), repo
}

func createTestUser(t *testing.T, s *Service, username string) *model.User {
	t.Helper()

	u, err := s.Signup(context.Background(), username, username+"@example.com", "password1")
	require.NoError(t, err)
	return u
}

func createTestAdmin(t *testing.T, s *Service, repo *repository.MemoryRepository, username string) *model.User {
	t.Helper()

	u := createTestUser(t, s, username)
	require.NoError(t, repo.SetUserRole(context.Background(), u.ID, true))
	u.IsAdmin = true
	return u
}

func createTestProduct(t *testing.T, s *Service, admin *model.User, name, price string, stock int) *model.Product {
	t.Helper()

	p, err := s.CreateProduct(context.Background(), admin, &model.Product{
		Name:        name,
		Price:       decimal.RequireFromString(price),
		Stock:       stock,
		IsAvailable: true,
	})
	require.NoError(t, err)
	return p
}
