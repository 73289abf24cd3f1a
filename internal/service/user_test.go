package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkasimov/shop-system/internal/apperr"
	"github.com/mkasimov/shop-system/internal/model"
)

func TestSignup(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	u, err := svc.Signup(ctx, "alice", "alice@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.True(t, u.IsActive)
	assert.False(t, u.IsAdmin)
	assert.NotEqual(t, uuid.Nil, u.ID)
}

func TestSignup_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{name: "empty username", username: "", email: "a@example.com", password: "password1"},
		{name: "invalid email", username: "alice", email: "not-an-email", password: "password1"},
		{name: "short password", username: "alice", email: "a@example.com", password: "pass1"},
		{name: "password without digit", username: "alice", email: "a@example.com", password: "passwords"},
		{name: "password without letter", username: "alice", email: "a@example.com", password: "12345678"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Signup(ctx, tt.username, tt.email, tt.password)
			require.Error(t, err)
			assert.Equal(t, apperr.Validation, apperr.KindOf(err))
		})
	}
}

func TestSignup_DuplicateUsername(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	createTestUser(t, svc, "alice")

	_, err := svc.Signup(ctx, "alice", "other@example.com", "password1")
	require.Error(t, err)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
}

func TestSignup_DuplicateEmailCaseInsensitive(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	createTestUser(t, svc, "alice")

	_, err := svc.Signup(ctx, "bob", "ALICE@example.com", "password1")
	require.Error(t, err)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	u := createTestUser(t, svc, "alice")

	token, err := svc.Login(ctx, "alice", "password1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	resolved, err := svc.CurrentUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, resolved.ID)
}

func TestLogin_BadCredentials(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	createTestUser(t, svc, "alice")

	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "wrong password", username: "alice", password: "wrongpass1"},
		{name: "unknown username", username: "nobody", password: "password1"},
		{name: "username case mismatch", username: "Alice", password: "password1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.username, tt.password)
			require.Error(t, err)
			assert.Equal(t, apperr.Unauthenticated, apperr.KindOf(err))
			assert.Equal(t, "incorrect username or password", apperr.MessageOf(err))
		})
	}
}

func TestCurrentUser_UnknownSubject(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CurrentUser(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, apperr.Unauthenticated, apperr.KindOf(err))
}

func TestGetUser_Access(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	owner := createTestUser(t, svc, "owner")
	stranger := createTestUser(t, svc, "stranger")
	admin := createTestAdmin(t, svc, repo, "admin")

	got, err := svc.GetUser(ctx, owner, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, got.ID)

	got, err = svc.GetUser(ctx, admin, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, got.ID)

	_, err = svc.GetUser(ctx, stranger, owner.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
}

func TestGetUser_ForbiddenBeforeLookup(t *testing.T) {
	svc, _ := newTestService(t)

	stranger := createTestUser(t, svc, "stranger")

	// Несуществующий идентификатор: посторонний получает отказ в доступе,
	// а не сведения о том, что пользователя нет.
	_, err := svc.GetUser(context.Background(), stranger, uuid.New())
	require.Error(t, err)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
}

func TestListUsers_AdminOnly(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	createTestUser(t, svc, "alice")
	user := createTestUser(t, svc, "bob")
	admin := createTestAdmin(t, svc, repo, "admin")

	users, err := svc.ListUsers(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, users, 3)

	_, err = svc.ListUsers(ctx, user)
	require.Error(t, err)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
}

func TestUpdateUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	u := createTestUser(t, svc, "alice")

	newName := "alice2"
	newEmail := "alice2@example.com"
	updated, err := svc.UpdateUser(ctx, u, u.ID, model.UserUpdate{Username: &newName, Email: &newEmail})
	require.NoError(t, err)
	assert.Equal(t, "alice2", updated.Username)
	assert.Equal(t, "alice2@example.com", updated.Email)

	newPassword := "newpassword2"
	_, err = svc.UpdateUser(ctx, updated, u.ID, model.UserUpdate{Password: &newPassword})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice2", "newpassword2")
	require.NoError(t, err)
}

func TestUpdateUser_OwnerOnly(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	owner := createTestUser(t, svc, "owner")
	admin := createTestAdmin(t, svc, repo, "admin")

	newName := "renamed"
	_, err := svc.UpdateUser(ctx, admin, owner.ID, model.UserUpdate{Username: &newName})
	require.Error(t, err)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
}

func TestUpdateUser_TakenUsername(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	createTestUser(t, svc, "alice")
	bob := createTestUser(t, svc, "bob")

	taken := "alice"
	_, err := svc.UpdateUser(ctx, bob, bob.ID, model.UserUpdate{Username: &taken})
	require.Error(t, err)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
}

func TestDeleteUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	u := createTestUser(t, svc, "alice")

	require.NoError(t, svc.DeleteUser(ctx, u, u.ID))

	_, err := svc.CurrentUser(ctx, u.ID)
	require.Error(t, err)
}

func TestDeleteUser_BlockedByActiveOrders(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	admin := createTestAdmin(t, svc, repo, "admin")
	u := createTestUser(t, svc, "alice")
	p := createTestProduct(t, svc, admin, "Widget", "10.00", 5)

	o, err := svc.CreateOrder(ctx, u, []model.OrderItemInput{{ProductID: p.ID, Quantity: 1}})
	require.NoError(t, err)

	err = svc.DeleteUser(ctx, u, u.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.InUse, apperr.KindOf(err))

	// После завершения заказа удаление проходит.
	_, err = svc.SetOrderStatus(ctx, admin, o.ID, model.StatusProcessing)
	require.NoError(t, err)
	_, err = svc.SetOrderStatus(ctx, admin, o.ID, model.StatusCompleted)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(ctx, u, u.ID))
}

func TestChangeRole(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	admin := createTestAdmin(t, svc, repo, "admin")
	u := createTestUser(t, svc, "alice")

	require.NoError(t, svc.ChangeRole(ctx, admin, u.ID, true))

	got, err := svc.GetUser(ctx, admin, u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAdmin)

	err = svc.ChangeRole(ctx, u, admin.ID, false)
	require.Error(t, err)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
}

func TestChangeActive(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	admin := createTestAdmin(t, svc, repo, "admin")
	u := createTestUser(t, svc, "alice")

	require.NoError(t, svc.ChangeActive(ctx, admin, u.ID, false))

	got, err := svc.GetUser(ctx, admin, u.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	// Деактивированный пользователь теряет доступ к каталогу.
	_, err = svc.SearchProducts(ctx, got, model.ProductSearchParams{})
	require.Error(t, err)
	assert.Equal(t, apperr.Inactive, apperr.KindOf(err))
}
