package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mkasimov/shop-system/internal/apperr"
	"github.com/mkasimov/shop-system/internal/model"
)

// MemoryRepository — хранилище в памяти с теми же инвариантами, что и
// PostgresRepository. Все мутации сериализуются одним мьютексом, читатели
// получают копии записей, поэтому частично записанное состояние снаружи
// не наблюдаемо. Используется в тестах.
type MemoryRepository struct {
	mu sync.RWMutex

	users      map[uuid.UUID]model.User
	products   map[uuid.UUID]model.Product
	statuses   map[uuid.UUID]model.Status
	orders     map[uuid.UUID]model.Order
	orderItems map[uuid.UUID][]model.OrderItem
}

// NewMemoryRepository создаёт пустое хранилище в памяти.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:      make(map[uuid.UUID]model.User),
		products:   make(map[uuid.UUID]model.Product),
		statuses:   make(map[uuid.UUID]model.Status),
		orders:     make(map[uuid.UUID]model.Order),
		orderItems: make(map[uuid.UUID][]model.OrderItem),
	}
}

// NewSeededMemoryRepository создаёт хранилище с базовым словарём статусов.
func NewSeededMemoryRepository() *MemoryRepository {
	r := NewMemoryRepository()
	for _, name := range []string{
		model.StatusPending, model.StatusProcessing,
		model.StatusCompleted, model.StatusCanceled,
	} {
		s := model.Status{ID: uuid.New(), Name: name, CreatedAt: time.Now(), UpdatedAt: time.Now()}
		r.statuses[s.ID] = s
	}
	return r
}

// Close освобождает ресурсы хранилища.
func (r *MemoryRepository) Close() error { return nil }

// Ping проверяет доступность хранилища.
func (r *MemoryRepository) Ping(ctx context.Context) error { return nil }

// CreateUser сохраняет нового пользователя. Проверка уникальности и вставка
// выполняются под одной блокировкой.
func (r *MemoryRepository) CreateUser(ctx context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Username == u.Username || strings.EqualFold(existing.Email, u.Email) {
			return apperr.New(apperr.Conflict, "username or email already registered")
		}
	}

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	r.users[u.ID] = *u
	return nil
}

// GetUserByID возвращает пользователя по идентификатору.
func (r *MemoryRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	return &u, nil
}

// GetUserByUsername возвращает пользователя по имени (с учётом регистра).
func (r *MemoryRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, apperr.New(apperr.NotFound, "user not found")
}

// ListUsers возвращает всех пользователей в порядке регистрации.
func (r *MemoryRepository) ListUsers(ctx context.Context) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

// UpdateUser сохраняет изменённые поля пользователя, повторно проверяя
// уникальность имени и почты против остальных пользователей.
func (r *MemoryRepository) UpdateUser(ctx context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[u.ID]
	if !ok {
		return apperr.New(apperr.NotFound, "user not found")
	}

	for id, existing := range r.users {
		if id == u.ID {
			continue
		}
		if existing.Username == u.Username || strings.EqualFold(existing.Email, u.Email) {
			return apperr.New(apperr.Conflict, "username or email already registered")
		}
	}

	stored.Username = u.Username
	stored.Email = u.Email
	stored.PasswordHash = u.PasswordHash
	stored.UpdatedAt = time.Now()
	r.users[u.ID] = stored
	*u = stored
	return nil
}

// SetUserRole выставляет признак администратора.
func (r *MemoryRepository) SetUserRole(ctx context.Context, id uuid.UUID, isAdmin bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return apperr.New(apperr.NotFound, "user not found")
	}
	u.IsAdmin = isAdmin
	u.UpdatedAt = time.Now()
	r.users[id] = u
	return nil
}

// SetUserActive выставляет признак активности учётной записи.
func (r *MemoryRepository) SetUserActive(ctx context.Context, id uuid.UUID, isActive bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return apperr.New(apperr.NotFound, "user not found")
	}
	u.IsActive = isActive
	u.UpdatedAt = time.Now()
	r.users[id] = u
	return nil
}

// DeleteUser удаляет пользователя вместе с терминальными заказами.
// При наличии нетерминальных заказов удаление блокируется.
func (r *MemoryRepository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return apperr.New(apperr.NotFound, "user not found")
	}

	for _, o := range r.orders {
		if o.UserID != id {
			continue
		}
		if !model.IsTerminalStatus(r.statuses[o.StatusID].Name) {
			return apperr.New(apperr.InUse, "user has active orders")
		}
	}

	for orderID, o := range r.orders {
		if o.UserID == id {
			delete(r.orders, orderID)
			delete(r.orderItems, orderID)
		}
	}
	delete(r.users, id)
	return nil
}

// CreateProduct сохраняет новый товар. Имя уникально без учёта регистра.
func (r *MemoryRepository) CreateProduct(ctx context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.products {
		if strings.EqualFold(existing.Name, p.Name) {
			return apperr.Newf(apperr.Conflict, "product name %q already exists", p.Name)
		}
	}

	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	r.products[p.ID] = *p
	return nil
}

// GetProductByID возвращает товар по идентификатору.
func (r *MemoryRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "product not found")
	}
	return &p, nil
}

// UpdateProduct сохраняет изменённые поля товара, исключая сам товар
// из проверки уникальности имени.
func (r *MemoryRepository) UpdateProduct(ctx context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.products[p.ID]
	if !ok {
		return apperr.New(apperr.NotFound, "product not found")
	}

	for id, existing := range r.products {
		if id != p.ID && strings.EqualFold(existing.Name, p.Name) {
			return apperr.Newf(apperr.Conflict, "product name %q already exists", p.Name)
		}
	}

	stored.Name = p.Name
	stored.Description = p.Description
	stored.Price = p.Price
	stored.Stock = p.Stock
	stored.IsAvailable = p.IsAvailable
	stored.UpdatedAt = time.Now()
	r.products[p.ID] = stored
	*p = stored
	return nil
}

// DeleteProduct удаляет товар, если на него не ссылаются позиции заказов.
func (r *MemoryRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return apperr.New(apperr.NotFound, "product not found")
	}

	for _, items := range r.orderItems {
		for _, item := range items {
			if item.ProductID == id {
				return apperr.New(apperr.InUse, "product is referenced by existing orders")
			}
		}
	}

	delete(r.products, id)
	return nil
}

// SearchProducts выполняет поиск по каталогу с фильтрами, сортировкой и
// пагинацией.
func (r *MemoryRepository) SearchProducts(ctx context.Context, params model.ProductSearchParams) (*model.ProductPage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		if params.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(params.Name)) {
			continue
		}
		if params.MinPrice != nil && p.Price.LessThan(*params.MinPrice) {
			continue
		}
		if params.MaxPrice != nil && p.Price.GreaterThan(*params.MaxPrice) {
			continue
		}
		if params.IsAvailable != nil && p.IsAvailable != *params.IsAvailable {
			continue
		}
		matched = append(matched, p)
	}

	desc := params.SortOrder == "desc"
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if desc {
			a, b = b, a
		}
		switch params.SortBy {
		case "price":
			return a.Price.LessThan(b.Price)
		case "stock":
			return a.Stock < b.Stock
		case "created_at":
			return a.CreatedAt.Before(b.CreatedAt)
		case "updated_at":
			return a.UpdatedAt.Before(b.UpdatedAt)
		default:
			return a.Name < b.Name
		}
	})

	total := len(matched)
	start := (params.Page - 1) * params.PageSize
	if start > total {
		start = total
	}
	end := start + params.PageSize
	if end > total {
		end = total
	}

	return &model.ProductPage{
		Products:      matched[start:end],
		TotalProducts: total,
		TotalPages:    (total + params.PageSize - 1) / params.PageSize,
		Page:          params.Page,
		PageSize:      params.PageSize,
	}, nil
}

// CreateStatus добавляет статус в словарь. Имя уникально без учёта регистра.
func (r *MemoryRepository) CreateStatus(ctx context.Context, s *model.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.statuses {
		if strings.EqualFold(existing.Name, s.Name) {
			return apperr.New(apperr.Conflict, "status name must be unique")
		}
	}

	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now
	r.statuses[s.ID] = *s
	return nil
}

// GetStatusByID возвращает статус по идентификатору.
func (r *MemoryRepository) GetStatusByID(ctx context.Context, id uuid.UUID) (*model.Status, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.statuses[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "status not found")
	}
	return &s, nil
}

// GetStatusByName возвращает статус по имени без учёта регистра.
func (r *MemoryRepository) GetStatusByName(ctx context.Context, name string) (*model.Status, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.statusByName(name)
	if !ok {
		return nil, apperr.New(apperr.NotFound, "status not found")
	}
	return &s, nil
}

// statusByName ищет статус по имени. Вызывается под блокировкой.
func (r *MemoryRepository) statusByName(name string) (model.Status, bool) {
	for _, s := range r.statuses {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return model.Status{}, false
}

// ListStatuses возвращает весь словарь статусов.
func (r *MemoryRepository) ListStatuses(ctx context.Context) ([]model.Status, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	statuses := make([]model.Status, 0, len(r.statuses))
	for _, s := range r.statuses {
		statuses = append(statuses, s)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].CreatedAt.Before(statuses[j].CreatedAt) })
	return statuses, nil
}

// UpdateStatus переименовывает статус.
func (r *MemoryRepository) UpdateStatus(ctx context.Context, s *model.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.statuses[s.ID]
	if !ok {
		return apperr.New(apperr.NotFound, "status not found")
	}

	for id, existing := range r.statuses {
		if id != s.ID && strings.EqualFold(existing.Name, s.Name) {
			return apperr.New(apperr.Conflict, "status name must be unique")
		}
	}

	stored.Name = s.Name
	stored.UpdatedAt = time.Now()
	r.statuses[s.ID] = stored
	*s = stored
	return nil
}

// DeleteStatus удаляет статус. Проверка использования и удаление выполняются
// под одной блокировкой с назначением статусов заказам, поэтому заказ не может
// остаться со ссылкой на удалённый статус.
func (r *MemoryRepository) DeleteStatus(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.statuses[id]; !ok {
		return apperr.New(apperr.NotFound, "status not found")
	}

	for _, o := range r.orders {
		if o.StatusID == id {
			return apperr.New(apperr.InUse, "status is in use by existing orders")
		}
	}

	delete(r.statuses, id)
	return nil
}

// CreateOrder создаёт заказ, фиксируя цены товаров на момент создания.
func (r *MemoryRepository) CreateOrder(ctx context.Context, userID uuid.UUID, items []model.OrderItemInput) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pending, ok := r.statusByName(model.StatusPending)
	if !ok {
		return nil, apperr.New(apperr.Configuration, "default status 'pending' not found")
	}

	now := time.Now()
	order := model.Order{
		ID:         uuid.New(),
		UserID:     userID,
		StatusID:   pending.ID,
		StatusName: pending.Name,
		Items:      make([]model.OrderItem, 0, len(items)),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	total := decimal.Zero
	for _, item := range items {
		p, ok := r.products[item.ProductID]
		if !ok {
			return nil, apperr.Newf(apperr.NotFound, "product %s not found", item.ProductID)
		}
		if !p.IsAvailable {
			return nil, apperr.Newf(apperr.Validation, "product %s is not available", item.ProductID)
		}

		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		order.Items = append(order.Items, model.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     p.Price,
		})
	}
	order.TotalPrice = total.Round(2)

	r.orders[order.ID] = order
	r.orderItems[order.ID] = append([]model.OrderItem(nil), order.Items...)
	return &order, nil
}

// getOrder собирает заказ с позициями и именем статуса. Вызывается под
// блокировкой.
func (r *MemoryRepository) getOrder(id uuid.UUID) (*model.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "order not found")
	}
	o.StatusName = r.statuses[o.StatusID].Name
	o.Items = append([]model.OrderItem(nil), r.orderItems[id]...)
	return &o, nil
}

// GetOrderByID возвращает заказ с позициями и именем статуса.
func (r *MemoryRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.getOrder(id)
}

// ListOrdersByUser возвращает заказы пользователя, новые первыми.
func (r *MemoryRepository) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := []model.Order{}
	for id, o := range r.orders {
		if o.UserID != userID {
			continue
		}
		full, err := r.getOrder(id)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *full)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders, nil
}

// SetOrderStatus переводит заказ в статус с указанным именем. Перевод из
// терминального статуса запрещён.
func (r *MemoryRepository) SetOrderStatus(ctx context.Context, orderID uuid.UUID, statusName string) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[orderID]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "order not found")
	}
	if model.IsTerminalStatus(r.statuses[o.StatusID].Name) {
		return nil, apperr.Newf(apperr.Validation, "order is in terminal status %q", r.statuses[o.StatusID].Name)
	}

	s, ok := r.statusByName(statusName)
	if !ok {
		return nil, apperr.Newf(apperr.Validation, "invalid status %q", statusName)
	}

	o.StatusID = s.ID
	o.UpdatedAt = time.Now()
	r.orders[orderID] = o
	return r.getOrder(orderID)
}

// CancelOrder отменяет заказ, находящийся в статусе "pending".
func (r *MemoryRepository) CancelOrder(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[orderID]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "order not found")
	}
	if !strings.EqualFold(r.statuses[o.StatusID].Name, model.StatusPending) {
		return nil, apperr.New(apperr.Validation, "only pending orders can be canceled")
	}

	canceled, ok := r.statusByName(model.StatusCanceled)
	if !ok {
		return nil, apperr.New(apperr.Configuration, "status 'canceled' not found")
	}

	o.StatusID = canceled.ID
	o.UpdatedAt = time.Now()
	r.orders[orderID] = o
	return r.getOrder(orderID)
}
