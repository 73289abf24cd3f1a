package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/mkasimov/shop-system/internal/apperr"
	"github.com/mkasimov/shop-system/internal/guard"
	"github.com/mkasimov/shop-system/internal/model"
)

// CreateOrder создаёт заказ от имени активного пользователя. Цены товаров
// фиксируются в момент создания; итоговая сумма округляется до двух знаков.
func (s *Service) CreateOrder(ctx context.Context, actor *model.User, items []model.OrderItemInput) (*model.Order, error) {
	if err := guard.Active(actor); err != nil {
		return nil, err
	}

	if len(items) == 0 {
		return nil, apperr.New(apperr.Validation, "at least one product must be provided")
	}
	seen := make(map[uuid.UUID]bool, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, apperr.New(apperr.Validation, "quantity must be at least 1")
		}
		if seen[item.ProductID] {
			return nil, apperr.Newf(apperr.Validation, "duplicate product %s in order", item.ProductID)
		}
		seen[item.ProductID] = true
	}

	return s.repo.CreateOrder(ctx, actor.ID, items)
}

// GetOrder возвращает заказ. Доступ имеют владелец заказа и администратор.
func (s *Service) GetOrder(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Order, error) {
	o, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := guard.OwnerOrAdmin(actor, o.UserID); err != nil {
		return nil, err
	}
	return o, nil
}

// SetOrderStatus переводит заказ в статус с указанным именем. Только для
// администратора; проверка прав выполняется до обращения к хранилищу,
// поэтому существование заказа не раскрывается посторонним.
func (s *Service) SetOrderStatus(ctx context.Context, actor *model.User, id uuid.UUID, statusName string) (*model.Order, error) {
	if err := guard.Admin(actor); err != nil {
		return nil, err
	}
	if statusName == "" {
		return nil, apperr.New(apperr.Validation, "status name must not be empty")
	}
	return s.repo.SetOrderStatus(ctx, id, statusName)
}

// CancelOrder отменяет заказ. Отменить может только владелец и только
// заказ в статусе "pending".
func (s *Service) CancelOrder(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Order, error) {
	o, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := guard.Owner(actor, o.UserID); err != nil {
		return nil, err
	}
	return s.repo.CancelOrder(ctx, id)
}

// ListOrdersForUser возвращает заказы пользователя. Доступ имеют владелец
// и администратор; отсутствие заказов — пустой список, а не ошибка.
func (s *Service) ListOrdersForUser(ctx context.Context, actor *model.User, userID uuid.UUID) ([]model.Order, error) {
	if err := guard.OwnerOrAdmin(actor, userID); err != nil {
		return nil, err
	}
	return s.repo.ListOrdersByUser(ctx, userID)
}
