package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/hongminglow/profile-auth/internal/models"
	"github.com/hongminglow/profile-auth/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Ensure Store satisfies the storage.UserStore interface at compile time.
var _ storage.UserStore = (*Store)(nil)

const uniqueViolation = "23505"

// DB is the subset of pgxpool.Pool used by Store.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// Store provides Postgres-backed persistence for users and profiles.
type Store struct {
	db    DB
	close func()
}

// NewUserStore connects to databaseURL and runs migrations.
func NewUserStore(ctx context.Context, databaseURL string, logger *zap.Logger) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrate(ctx, pool, logger); err != nil {
		pool.Close()
		return nil, err
	}

	return &Store{db: pool, close: pool.Close}, nil
}

// New wraps an existing connection. The caller keeps ownership of db.
func New(db DB) *Store {
	return &Store{db: db}
}

// Close releases database resources.
func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// CreateUser inserts the user row and its empty profile in one transaction.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	const insertUser = `
		INSERT INTO users (name, surname, username, password)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	const insertProfile = `
		INSERT INTO user_profiles (user_id)
		VALUES ($1)
		RETURNING id`

	created := user
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, insertUser, user.Name, user.Surname, user.Username, user.PasswordHash).
			Scan(&created.ID, &created.CreatedAt); err != nil {
			return err
		}
		profile := models.Profile{UserID: created.ID}
		if err := tx.QueryRow(ctx, insertProfile, created.ID).Scan(&profile.ID); err != nil {
			return err
		}
		created.Profile = &profile
		return nil
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, storage.Wrap("create user", err)
	}
	return created, nil
}

// withTx runs fn inside a transaction, committing on success and rolling back
// on error or panic.
func (s *Store) withTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		err = tx.Commit(ctx)
	}()

	return fn(tx)
}

// FindByUsername fetches a user by exact, case-sensitive username.
func (s *Store) FindByUsername(ctx context.Context, username string) (models.User, error) {
	const query = `
		SELECT id, name, surname, username, password, created_at
		FROM users
		WHERE username = $1`

	var user models.User
	err := s.db.QueryRow(ctx, query, username).
		Scan(&user.ID, &user.Name, &user.Surname, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, storage.Wrap("find user by username", err)
	}
	return user, nil
}

// FindByID fetches a user and its profile.
func (s *Store) FindByID(ctx context.Context, id int64) (models.User, error) {
	const query = `
		SELECT u.id, u.name, u.surname, u.username, u.password, u.created_at,
			p.id, p.phone, p.age, p.country, p.city, p.address, p.zip_code
		FROM users u
		LEFT JOIN user_profiles p ON p.user_id = u.id
		WHERE u.id = $1`

	var (
		user      models.User
		profileID *int64
		fields    models.ProfileFields
	)
	err := s.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Name, &user.Surname, &user.Username, &user.PasswordHash, &user.CreatedAt,
		&profileID, &fields.Phone, &fields.Age, &fields.Country, &fields.City, &fields.Address, &fields.ZipCode,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, storage.Wrap("find user by id", err)
	}
	if profileID != nil {
		user.Profile = &models.Profile{ID: *profileID, UserID: user.ID, ProfileFields: fields}
	}
	return user, nil
}

// UpdateProfile overwrites all profile columns for userID.
func (s *Store) UpdateProfile(ctx context.Context, userID int64, fields models.ProfileFields) error {
	const query = `
		UPDATE user_profiles
		SET phone = $2, age = $3, country = $4, city = $5, address = $6, zip_code = $7
		WHERE user_id = $1`

	tag, err := s.db.Exec(ctx, query, userID,
		fields.Phone, fields.Age, fields.Country, fields.City, fields.Address, fields.ZipCode)
	if err != nil {
		return storage.Wrap("update profile", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteUser removes a user; the profile row goes with it via ON DELETE CASCADE.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return storage.Wrap("delete user", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
