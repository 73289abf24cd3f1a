// Package service реализует бизнес-логику интернет-магазина: учётные
// записи, каталог, словарь статусов и жизненный цикл заказов.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mkasimov/shop-system/internal/auth"
	"github.com/mkasimov/shop-system/internal/model"
)

// UserRepository описывает хранилище пользователей.
type UserRepository interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, u *model.User) error
	SetUserRole(ctx context.Context, id uuid.UUID, isAdmin bool) error
	SetUserActive(ctx context.Context, id uuid.UUID, isActive bool) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// ProductRepository описывает хранилище каталога.
type ProductRepository interface {
	CreateProduct(ctx context.Context, p *model.Product) error
	GetProductByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	UpdateProduct(ctx context.Context, p *model.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	SearchProducts(ctx context.Context, params model.ProductSearchParams) (*model.ProductPage, error)
}

// StatusRepository описывает хранилище словаря статусов.
type StatusRepository interface {
	CreateStatus(ctx context.Context, s *model.Status) error
	GetStatusByID(ctx context.Context, id uuid.UUID) (*model.Status, error)
	GetStatusByName(ctx context.Context, name string) (*model.Status, error)
	ListStatuses(ctx context.Context) ([]model.Status, error)
	UpdateStatus(ctx context.Context, s *model.Status) error
	DeleteStatus(ctx context.Context, id uuid.UUID) error
}

// OrderRepository описывает хранилище заказов.
type OrderRepository interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, items []model.OrderItemInput) (*model.Order, error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error)
	SetOrderStatus(ctx context.Context, orderID uuid.UUID, statusName string) (*model.Order, error)
	CancelOrder(ctx context.Context, orderID uuid.UUID) (*model.Order, error)
}

// Repository описывает контракт доступа к данным, используемый сервисом.
// Реализации обязаны выполнять проверку инвариантов и запись как один
// атомарный шаг на коллекцию.
type Repository interface {
	UserRepository
	ProductRepository
	StatusRepository
	OrderRepository
	Ping(ctx context.Context) error
	Close() error
}

// Service содержит бизнес-логику интернет-магазина.
type Service struct {
	repo   Repository
	tokens *auth.TokenManager
}

// NewService создаёт новый сервис с указанным репозиторием и менеджером
// токенов.
func NewService(repo Repository, tokens *auth.TokenManager) *Service {
	return &Service{
		repo:   repo,
		tokens: tokens,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// Ping проверяет доступность хранилища.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// IssueToken выпускает сессионный токен для пользователя.
func (s *Service) IssueToken(userID uuid.UUID, ttl time.Duration) (string, error) {
	return s.tokens.Issue(userID, ttl)
}
