// Package repository содержит реализации хранилищ: PostgreSQL для
// промышленной эксплуатации и защищённую мьютексом память для тестов.
// Обе реализации дают одну гарантию: проверка инвариантов и последующая
// запись выполняются как один атомарный шаг на коллекцию.
package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/shopspring/decimal"

	"github.com/mkasimov/shop-system/internal/apperr"
	"github.com/mkasimov/shop-system/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresRepository предоставляет доступ к хранилищу данных в PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository создаёт новый репозиторий и инициализирует схему БД
// через миграции.
func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &PostgresRepository{pool: pool}

	if err := r.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *PostgresRepository) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(r.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// Close закрывает пул соединений с БД.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// Ping проверяет доступность хранилища.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation
}

// CreateUser сохраняет нового пользователя. Уникальность имени и почты
// обеспечивается уникальными индексами, поэтому параллельные регистрации
// с одинаковыми данными не могут пройти обе.
func (r *PostgresRepository) CreateUser(ctx context.Context, u *model.User) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (id, username, email, password_hash, is_admin, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at, updated_at`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.IsAdmin, u.IsActive,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.New(apperr.Conflict, "username or email already registered")
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.IsAdmin, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

const userColumns = `id, username, email, password_hash, is_admin, is_active, created_at, updated_at`

// GetUserByID возвращает пользователя по идентификатору.
func (r *PostgresRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetUserByUsername возвращает пользователя по имени. Имя сравнивается
// с учётом регистра.
func (r *PostgresRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "user not found")
		}
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

// ListUsers возвращает всех пользователей.
func (r *PostgresRepository) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return users, nil
}

// UpdateUser сохраняет изменённые поля пользователя.
func (r *PostgresRepository) UpdateUser(ctx context.Context, u *model.User) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE users
		 SET username = $2, email = $3, password_hash = $4, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at`,
		u.ID, u.Username, u.Email, u.PasswordHash,
	).Scan(&u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.New(apperr.NotFound, "user not found")
		}
		if isUniqueViolation(err) {
			return apperr.New(apperr.Conflict, "username or email already registered")
		}
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// SetUserRole выставляет признак администратора.
func (r *PostgresRepository) SetUserRole(ctx context.Context, id uuid.UUID, isAdmin bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET is_admin = $2, updated_at = now() WHERE id = $1`,
		id, isAdmin,
	)
	if err != nil {
		return fmt.Errorf("set user role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "user not found")
	}
	return nil
}

// SetUserActive выставляет признак активности учётной записи.
func (r *PostgresRepository) SetUserActive(ctx context.Context, id uuid.UUID, isActive bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET is_active = $2, updated_at = now() WHERE id = $1`,
		id, isActive,
	)
	if err != nil {
		return fmt.Errorf("set user active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "user not found")
	}
	return nil
}

// DeleteUser удаляет пользователя. Пока за пользователем числятся заказы
// в нетерминальном статусе, удаление блокируется.
func (r *PostgresRepository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (
		     SELECT 1 FROM orders o
		     JOIN statuses s ON s.id = o.status_id
		     WHERE o.user_id = $1 AND lower(s.name) NOT IN ($2, $3)
		 )`,
		id, model.StatusCompleted, model.StatusCanceled,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check active orders: %w", err)
	}
	if exists {
		return apperr.New(apperr.InUse, "user has active orders")
	}

	tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "user not found")
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

const productColumns = `id, name, description, price::text, stock, is_available, created_at, updated_at`

func scanProduct(row pgx.Row) (*model.Product, error) {
	var (
		p        model.Product
		priceStr string
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &priceStr,
		&p.Stock, &p.IsAvailable, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Price, err = decimal.NewFromString(priceStr)
	if err != nil {
		return nil, fmt.Errorf("parse price: %w", err)
	}
	return &p, nil
}

// CreateProduct сохраняет новый товар. Имя уникально без учёта регистра.
func (r *PostgresRepository) CreateProduct(ctx context.Context, p *model.Product) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO products (id, name, description, price, stock, is_available)
		 VALUES ($1, $2, $3, $4::numeric, $5, $6)
		 RETURNING created_at, updated_at`,
		p.ID, p.Name, p.Description, p.Price.StringFixed(2), p.Stock, p.IsAvailable,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Newf(apperr.Conflict, "product name %q already exists", p.Name)
		}
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// GetProductByID возвращает товар по идентификатору.
func (r *PostgresRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "product not found")
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// UpdateProduct сохраняет изменённые поля товара.
func (r *PostgresRepository) UpdateProduct(ctx context.Context, p *model.Product) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE products
		 SET name = $2, description = $3, price = $4::numeric, stock = $5,
		     is_available = $6, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at`,
		p.ID, p.Name, p.Description, p.Price.StringFixed(2), p.Stock, p.IsAvailable,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.New(apperr.NotFound, "product not found")
		}
		if isUniqueViolation(err) {
			return apperr.Newf(apperr.Conflict, "product name %q already exists", p.Name)
		}
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// DeleteProduct удаляет товар. Товар, на который ссылаются позиции заказов,
// удалить нельзя: исторические заказы хранят ссылку вместе с зафиксированной
// ценой.
func (r *PostgresRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperr.New(apperr.InUse, "product is referenced by existing orders")
		}
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "product not found")
	}
	return nil
}

// SearchProducts выполняет поиск по каталогу с фильтрами, сортировкой и
// пагинацией. Параметры уже провалидированы бизнес-уровнем.
func (r *PostgresRepository) SearchProducts(ctx context.Context, params model.ProductSearchParams) (*model.ProductPage, error) {
	where := ` WHERE TRUE`
	args := []any{}

	if params.Name != "" {
		args = append(args, "%"+params.Name+"%")
		where += fmt.Sprintf(` AND name ILIKE $%d`, len(args))
	}
	if params.MinPrice != nil {
		args = append(args, params.MinPrice.StringFixed(2))
		where += fmt.Sprintf(` AND price >= $%d::numeric`, len(args))
	}
	if params.MaxPrice != nil {
		args = append(args, params.MaxPrice.StringFixed(2))
		where += fmt.Sprintf(` AND price <= $%d::numeric`, len(args))
	}
	if params.IsAvailable != nil {
		args = append(args, *params.IsAvailable)
		where += fmt.Sprintf(` AND is_available = $%d`, len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	// Ключ сортировки подставляется из списка допустимых значений,
	// проверенного бизнес-уровнем, и не содержит пользовательского ввода.
	order := fmt.Sprintf(` ORDER BY %s %s`, params.SortBy, params.SortOrder)

	args = append(args, params.PageSize, (params.Page-1)*params.PageSize)
	limit := fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products`+where+order+limit, args...)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	products := make([]model.Product, 0, params.PageSize)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return &model.ProductPage{
		Products:      products,
		TotalProducts: total,
		TotalPages:    (total + params.PageSize - 1) / params.PageSize,
		Page:          params.Page,
		PageSize:      params.PageSize,
	}, nil
}

const statusColumns = `id, name, created_at, updated_at`

func scanStatus(row pgx.Row) (*model.Status, error) {
	var s model.Status
	if err := row.Scan(&s.ID, &s.Name, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateStatus добавляет статус в словарь. Имя уникально без учёта регистра.
func (r *PostgresRepository) CreateStatus(ctx context.Context, s *model.Status) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO statuses (id, name) VALUES ($1, $2) RETURNING created_at, updated_at`,
		s.ID, s.Name,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.New(apperr.Conflict, "status name must be unique")
		}
		return fmt.Errorf("create status: %w", err)
	}
	return nil
}

// GetStatusByID возвращает статус по идентификатору.
func (r *PostgresRepository) GetStatusByID(ctx context.Context, id uuid.UUID) (*model.Status, error) {
	s, err := scanStatus(r.pool.QueryRow(ctx,
		`SELECT `+statusColumns+` FROM statuses WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "status not found")
		}
		return nil, fmt.Errorf("get status: %w", err)
	}
	return s, nil
}

// GetStatusByName возвращает статус по имени без учёта регистра.
func (r *PostgresRepository) GetStatusByName(ctx context.Context, name string) (*model.Status, error) {
	s, err := scanStatus(r.pool.QueryRow(ctx,
		`SELECT `+statusColumns+` FROM statuses WHERE lower(name) = lower($1)`, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "status not found")
		}
		return nil, fmt.Errorf("get status by name: %w", err)
	}
	return s, nil
}

// ListStatuses возвращает весь словарь статусов.
func (r *PostgresRepository) ListStatuses(ctx context.Context) ([]model.Status, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+statusColumns+` FROM statuses ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("select statuses: %w", err)
	}
	defer rows.Close()

	var statuses []model.Status
	for rows.Next() {
		s, err := scanStatus(rows)
		if err != nil {
			return nil, fmt.Errorf("scan status: %w", err)
		}
		statuses = append(statuses, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return statuses, nil
}

// UpdateStatus переименовывает статус.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, s *model.Status) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE statuses SET name = $2, updated_at = now() WHERE id = $1 RETURNING updated_at`,
		s.ID, s.Name,
	).Scan(&s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.New(apperr.NotFound, "status not found")
		}
		if isUniqueViolation(err) {
			return apperr.New(apperr.Conflict, "status name must be unique")
		}
		return fmt.Errorf("update status: %w", err)
	}
	return nil
}

// DeleteStatus удаляет статус из словаря. Проверка использования и удаление
// выполняются в одной транзакции под блокировкой строки статуса, поэтому
// параллельное назначение этого статуса заказу не может проскочить между
// проверкой и удалением.
func (r *PostgresRepository) DeleteStatus(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var dummy int
	err = tx.QueryRow(ctx, `SELECT 1 FROM statuses WHERE id = $1 FOR UPDATE`, id).Scan(&dummy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.New(apperr.NotFound, "status not found")
		}
		return fmt.Errorf("lock status: %w", err)
	}

	var inUse bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM orders WHERE status_id = $1)`, id,
	).Scan(&inUse)
	if err != nil {
		return fmt.Errorf("check status usage: %w", err)
	}
	if inUse {
		return apperr.New(apperr.InUse, "status is in use by existing orders")
	}

	if _, err := tx.Exec(ctx, `DELETE FROM statuses WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// CreateOrder создаёт заказ. Цены и доступность товаров фиксируются в момент
// создания в одной транзакции: параллельные изменения каталога не влияют на
// уже вычисленную сумму.
func (r *PostgresRepository) CreateOrder(ctx context.Context, userID uuid.UUID, items []model.OrderItemInput) (*model.Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var pendingID uuid.UUID
	err = tx.QueryRow(ctx,
		`SELECT id FROM statuses WHERE lower(name) = $1`, model.StatusPending,
	).Scan(&pendingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.Configuration, "default status 'pending' not found")
		}
		return nil, fmt.Errorf("resolve pending status: %w", err)
	}

	order := &model.Order{
		ID:         uuid.New(),
		UserID:     userID,
		StatusID:   pendingID,
		StatusName: model.StatusPending,
		Items:      make([]model.OrderItem, 0, len(items)),
	}

	total := decimal.Zero
	for _, item := range items {
		var (
			priceStr  string
			available bool
		)
		err := tx.QueryRow(ctx,
			`SELECT price::text, is_available FROM products WHERE id = $1`, item.ProductID,
		).Scan(&priceStr, &available)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperr.Newf(apperr.NotFound, "product %s not found", item.ProductID)
			}
			return nil, fmt.Errorf("resolve product: %w", err)
		}
		if !available {
			return nil, apperr.Newf(apperr.Validation, "product %s is not available", item.ProductID)
		}

		price, err := decimal.NewFromString(priceStr)
		if err != nil {
			return nil, fmt.Errorf("parse price: %w", err)
		}

		total = total.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		order.Items = append(order.Items, model.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     price,
		})
	}
	order.TotalPrice = total.Round(2)

	err = tx.QueryRow(ctx,
		`INSERT INTO orders (id, user_id, status_id, total_price)
		 VALUES ($1, $2, $3, $4::numeric)
		 RETURNING created_at, updated_at`,
		order.ID, order.UserID, order.StatusID, order.TotalPrice.StringFixed(2),
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	for _, item := range order.Items {
		_, err := tx.Exec(ctx,
			`INSERT INTO order_items (order_id, product_id, quantity, price)
			 VALUES ($1, $2, $3, $4::numeric)`,
			order.ID, item.ProductID, item.Quantity, item.Price.StringFixed(2),
		)
		if err != nil {
			return nil, fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return order, nil
}

func (r *PostgresRepository) orderItems(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT product_id, quantity, price::text FROM order_items WHERE order_id = $1`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("select order items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var (
			item     model.OrderItem
			priceStr string
		)
		if err := rows.Scan(&item.ProductID, &item.Quantity, &priceStr); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		item.Price, err = decimal.NewFromString(priceStr)
		if err != nil {
			return nil, fmt.Errorf("parse price: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return items, nil
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		o        model.Order
		totalStr string
	)
	err := row.Scan(&o.ID, &o.UserID, &o.StatusID, &o.StatusName,
		&totalStr, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.TotalPrice, err = decimal.NewFromString(totalStr)
	if err != nil {
		return nil, fmt.Errorf("parse total price: %w", err)
	}
	return &o, nil
}

const orderColumns = `o.id, o.user_id, o.status_id, s.name, o.total_price::text, o.created_at, o.updated_at`

// GetOrderByID возвращает заказ с позициями и именем статуса.
func (r *PostgresRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders o JOIN statuses s ON s.id = o.status_id WHERE o.id = $1`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "order not found")
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	o.Items, err = r.orderItems(ctx, id)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// ListOrdersByUser возвращает заказы пользователя. Отсутствие заказов —
// нормальный результат, возвращается пустой список.
func (r *PostgresRepository) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+`
		 FROM orders o JOIN statuses s ON s.id = o.status_id
		 WHERE o.user_id = $1
		 ORDER BY o.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	for i := range orders {
		orders[i].Items, err = r.orderItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// SetOrderStatus переводит заказ в статус с указанным именем. Строка заказа
// блокируется на время транзакции, строка нового статуса удерживается
// разделяемой блокировкой: параллельное удаление этого статуса не может
// оставить заказ со ссылкой в никуда. Перевод из терминального статуса
// запрещён.
func (r *PostgresRepository) SetOrderStatus(ctx context.Context, orderID uuid.UUID, statusName string) (*model.Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var currentName string
	err = tx.QueryRow(ctx,
		`SELECT s.name FROM orders o JOIN statuses s ON s.id = o.status_id
		 WHERE o.id = $1 FOR UPDATE OF o`,
		orderID,
	).Scan(&currentName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "order not found")
		}
		return nil, fmt.Errorf("lock order: %w", err)
	}
	if model.IsTerminalStatus(currentName) {
		return nil, apperr.Newf(apperr.Validation, "order is in terminal status %q", currentName)
	}

	var statusID uuid.UUID
	err = tx.QueryRow(ctx,
		`SELECT id FROM statuses WHERE lower(name) = lower($1) FOR SHARE`, statusName,
	).Scan(&statusID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.Newf(apperr.Validation, "invalid status %q", statusName)
		}
		return nil, fmt.Errorf("resolve status: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE orders SET status_id = $2, updated_at = now() WHERE id = $1`,
		orderID, statusID,
	)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return r.GetOrderByID(ctx, orderID)
}

// CancelOrder отменяет заказ. Отмена возможна только из статуса "pending";
// проверка и перевод выполняются в одной транзакции под блокировкой строки
// заказа.
func (r *PostgresRepository) CancelOrder(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var currentName string
	err = tx.QueryRow(ctx,
		`SELECT s.name FROM orders o JOIN statuses s ON s.id = o.status_id
		 WHERE o.id = $1 FOR UPDATE OF o`,
		orderID,
	).Scan(&currentName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "order not found")
		}
		return nil, fmt.Errorf("lock order: %w", err)
	}
	if !strings.EqualFold(currentName, model.StatusPending) {
		return nil, apperr.New(apperr.Validation, "only pending orders can be canceled")
	}

	var canceledID uuid.UUID
	err = tx.QueryRow(ctx,
		`SELECT id FROM statuses WHERE lower(name) = $1 FOR SHARE`, model.StatusCanceled,
	).Scan(&canceledID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.Configuration, "status 'canceled' not found")
		}
		return nil, fmt.Errorf("resolve canceled status: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE orders SET status_id = $2, updated_at = now() WHERE id = $1`,
		orderID, canceledID,
	)
	if err != nil {
		return nil, fmt.Errorf("cancel order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return r.GetOrderByID(ctx, orderID)
}
