package service

import (
	"context"
	"net/mail"
	"unicode"

	"github.com/google/uuid"

	"github.com/mkasimov/shop-system/internal/apperr"
	"github.com/mkasimov/shop-system/internal/auth"
	"github.com/mkasimov/shop-system/internal/guard"
	"github.com/mkasimov/shop-system/internal/model"
)

// validatePassword проверяет парольную политику: не короче восьми символов,
// хотя бы одна буква и одна цифра.
func validatePassword(password string) error {
	if len(password) < 8 {
		return apperr.New(apperr.Validation, "password must be at least 8 characters long")
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return apperr.New(apperr.Validation, "password must contain at least one letter and one digit")
	}
	return nil
}

func validateEmail(email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return apperr.New(apperr.Validation, "invalid email address")
	}
	return nil
}

// Signup регистрирует нового пользователя. Новые учётные записи активны
// и не имеют прав администратора.
func (s *Service) Signup(ctx context.Context, username, email, password string) (*model.User, error) {
	if username == "" {
		return nil, apperr.New(apperr.Validation, "username must not be empty")
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      false,
		IsActive:     true,
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login проверяет учётные данные и выпускает сессионный токен.
// Отсутствие пользователя и неверный пароль неразличимы для клиента.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if apperr.KindOf(err) == apperr.NotFound {
			return "", apperr.New(apperr.Unauthenticated, "incorrect username or password")
		}
		return "", err
	}

	if !auth.VerifyPassword(password, u.PasswordHash) {
		return "", apperr.New(apperr.Unauthenticated, "incorrect username or password")
	}

	return s.tokens.Issue(u.ID, 0)
}

// CurrentUser разрешает субъект токена в пользователя. Субъект, которого
// нет в хранилище, означает недействительный токен, а не отсутствующий
// ресурс.
func (s *Service) CurrentUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if apperr.KindOf(err) == apperr.NotFound {
			return nil, apperr.New(apperr.Unauthenticated, "could not validate credentials")
		}
		return nil, err
	}
	return u, nil
}

// GetUser возвращает пользователя по идентификатору. Доступ имеют владелец
// учётной записи и администратор.
func (s *Service) GetUser(ctx context.Context, actor *model.User, id uuid.UUID) (*model.User, error) {
	if err := guard.OwnerOrAdmin(actor, id); err != nil {
		return nil, err
	}
	return s.repo.GetUserByID(ctx, id)
}

// ListUsers возвращает всех пользователей. Только для администратора.
func (s *Service) ListUsers(ctx context.Context, actor *model.User) ([]model.User, error) {
	if err := guard.Admin(actor); err != nil {
		return nil, err
	}
	return s.repo.ListUsers(ctx)
}

// UpdateUser обновляет собственные данные пользователя: имя, почту, пароль.
func (s *Service) UpdateUser(ctx context.Context, actor *model.User, id uuid.UUID, upd model.UserUpdate) (*model.User, error) {
	if err := guard.Owner(actor, id); err != nil {
		return nil, err
	}

	u, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Username != nil {
		if *upd.Username == "" {
			return nil, apperr.New(apperr.Validation, "username must not be empty")
		}
		u.Username = *upd.Username
	}
	if upd.Email != nil {
		if err := validateEmail(*upd.Email); err != nil {
			return nil, err
		}
		u.Email = *upd.Email
	}
	if upd.Password != nil {
		if err := validatePassword(*upd.Password); err != nil {
			return nil, err
		}
		hash, err := auth.HashPassword(*upd.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}

	if err := s.repo.UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// DeleteUser удаляет собственную учётную запись. Удаление блокируется,
// пока за пользователем числятся незавершённые заказы.
func (s *Service) DeleteUser(ctx context.Context, actor *model.User, id uuid.UUID) error {
	if err := guard.Owner(actor, id); err != nil {
		return err
	}
	return s.repo.DeleteUser(ctx, id)
}

// ChangeRole выставляет пользователю признак администратора.
func (s *Service) ChangeRole(ctx context.Context, actor *model.User, id uuid.UUID, isAdmin bool) error {
	if err := guard.Admin(actor); err != nil {
		return err
	}
	return s.repo.SetUserRole(ctx, id, isAdmin)
}

// ChangeActive активирует или деактивирует учётную запись пользователя.
func (s *Service) ChangeActive(ctx context.Context, actor *model.User, id uuid.UUID, isActive bool) error {
	if err := guard.Admin(actor); err != nil {
		return err
	}
	return s.repo.SetUserActive(ctx, id, isActive)
}
