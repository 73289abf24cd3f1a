// Package model содержит доменные сущности интернет-магазина.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User представляет зарегистрированного пользователя магазина.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash []byte
	IsAdmin      bool
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserUpdate описывает частичное обновление данных пользователя.
// Нулевые указатели означают "поле не менять".
type UserUpdate struct {
	Username *string
	Email    *string
	Password *string
}

// Product представляет товар каталога.
type Product struct {
	ID          uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	IsAvailable bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProductUpdate описывает частичное обновление товара.
type ProductUpdate struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	IsAvailable *bool
}

// ProductSearchParams задаёт фильтры, сортировку и пагинацию поиска по каталогу.
// Фильтры объединяются по И.
type ProductSearchParams struct {
	Name        string
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	IsAvailable *bool
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}

// ProductPage содержит одну страницу результатов поиска по каталогу.
type ProductPage struct {
	Products      []Product
	TotalProducts int
	TotalPages    int
	Page          int
	PageSize      int
}

// Status представляет именованное состояние в словаре статусов заказа.
type Status struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Имена статусов, от которых зависит машина состояний заказа.
// Словарь редактируется администратором, поэтому зависимость идёт
// по имени, а не по идентификатору.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusCanceled   = "canceled"
)

// IsTerminalStatus сообщает, является ли статус терминальным:
// из него нет переходов. Имена сравниваются без учёта регистра,
// как и везде в словаре статусов.
func IsTerminalStatus(name string) bool {
	return strings.EqualFold(name, StatusCompleted) || strings.EqualFold(name, StatusCanceled)
}

// OrderItem представляет позицию заказа с зафиксированной на момент
// создания ценой товара.
type OrderItem struct {
	ProductID uuid.UUID
	Quantity  int
	Price     decimal.Decimal
}

// OrderItemInput описывает позицию создаваемого заказа.
type OrderItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// Order представляет заказ пользователя.
type Order struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	StatusID   uuid.UUID
	StatusName string
	TotalPrice decimal.Decimal
	Items      []OrderItem
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
