// Package guard содержит композицию проверок авторизации.
// Каждая проверка принимает уже разрешённого пользователя и возвращает
// либо nil, либо типизированный отказ. Проверки выполняются
// последовательно; первый отказ прерывает цепочку и доходит до клиента
// без изменения вида.
package guard

import (
	"github.com/google/uuid"

	"github.com/mkasimov/shop-system/internal/apperr"
	"github.com/mkasimov/shop-system/internal/model"
)

// Active требует активную учётную запись.
func Active(u *model.User) error {
	if u == nil {
		return apperr.New(apperr.Unauthenticated, "authentication required")
	}
	if !u.IsActive {
		return apperr.New(apperr.Inactive, "inactive user")
	}
	return nil
}

// Admin требует активную учётную запись с правами администратора.
func Admin(u *model.User) error {
	if err := Active(u); err != nil {
		return err
	}
	if !u.IsAdmin {
		return apperr.New(apperr.Forbidden, "admin privileges required")
	}
	return nil
}

// OwnerOrAdmin требует, чтобы пользователь был владельцем ресурса либо
// администратором. Активность не требуется: просмотр собственных данных
// доступен и деактивированной учётной записи.
func OwnerOrAdmin(u *model.User, ownerID uuid.UUID) error {
	if u == nil {
		return apperr.New(apperr.Unauthenticated, "authentication required")
	}
	if u.ID != ownerID && !u.IsAdmin {
		return apperr.New(apperr.Forbidden, "access to another user's resource is forbidden")
	}
	return nil
}

// Owner требует активного владельца ресурса. Администратор здесь
// не проходит: операция доступна только самому владельцу.
func Owner(u *model.User, ownerID uuid.UUID) error {
	if err := Active(u); err != nil {
		return err
	}
	if u.ID != ownerID {
		return apperr.New(apperr.Forbidden, "only the owner may perform this action")
	}
	return nil
}
