package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/mkasimov/shop-system/internal/apperr"
	"github.com/mkasimov/shop-system/internal/guard"
	"github.com/mkasimov/shop-system/internal/model"
)

const maxStatusNameLen = 20

func validateStatusName(name string) error {
	if name == "" {
		return apperr.New(apperr.Validation, "status name must not be empty")
	}
	if len(name) > maxStatusNameLen {
		return apperr.Newf(apperr.Validation, "status name must not exceed %d characters", maxStatusNameLen)
	}
	return nil
}

// CreateStatus добавляет статус в словарь. Только для администратора.
func (s *Service) CreateStatus(ctx context.Context, actor *model.User, name string) (*model.Status, error) {
	if err := guard.Admin(actor); err != nil {
		return nil, err
	}
	if err := validateStatusName(name); err != nil {
		return nil, err
	}

	st := &model.Status{ID: uuid.New(), Name: name}
	if err := s.repo.CreateStatus(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// GetStatus возвращает статус по идентификатору. Только для администратора.
func (s *Service) GetStatus(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Status, error) {
	if err := guard.Admin(actor); err != nil {
		return nil, err
	}
	return s.repo.GetStatusByID(ctx, id)
}

// ListStatuses возвращает весь словарь статусов. Только для администратора.
func (s *Service) ListStatuses(ctx context.Context, actor *model.User) ([]model.Status, error) {
	if err := guard.Admin(actor); err != nil {
		return nil, err
	}
	return s.repo.ListStatuses(ctx)
}

// UpdateStatus переименовывает статус. Только для администратора.
func (s *Service) UpdateStatus(ctx context.Context, actor *model.User, id uuid.UUID, name string) (*model.Status, error) {
	if err := guard.Admin(actor); err != nil {
		return nil, err
	}
	if err := validateStatusName(name); err != nil {
		return nil, err
	}

	st := &model.Status{ID: id, Name: name}
	if err := s.repo.UpdateStatus(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// DeleteStatus удаляет статус из словаря. Только для администратора.
// Статус, на который ссылается хотя бы один заказ, удалить нельзя.
func (s *Service) DeleteStatus(ctx context.Context, actor *model.User, id uuid.UUID) error {
	if err := guard.Admin(actor); err != nil {
		return err
	}
	return s.repo.DeleteStatus(ctx, id)
}
