package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tubeaccounts/backend/internal/models"
	"github.com/tubeaccounts/backend/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrNotFound  = gorm.ErrRecordNotFound
	ErrDuplicate = gorm.ErrDuplicatedKey
)

// UserStore persists users with GORM. Passwords are hashed on the way in;
// single-column writes (refresh token, password) skip hooks and the
// updated_at bump, and are last-write-wins per row.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByUsernameOrEmail returns the first user whose username or email
// matches exactly. Empty arguments are ignored; both empty means not found.
func (s *UserStore) FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	if username == "" && email == "" {
		return nil, ErrNotFound
	}

	query := s.db.WithContext(ctx).Model(&models.User{})
	switch {
	case username != "" && email != "":
		query = query.Where("username = ? OR email = ?", username, email)
	case username != "":
		query = query.Where("username = ?", username)
	default:
		query = query.Where("email = ?", email)
	}

	var u models.User
	if err := query.Order("id ASC").First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// Create hashes u.Password in place and inserts the row.
func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	hash, err := utils.HashPassword(u.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.Password = hash
	return s.db.WithContext(ctx).Create(u).Error
}

// UpdateByID sets fields on the user and returns the updated row.
func (s *UserStore) UpdateByID(ctx context.Context, id uint, fields map[string]interface{}) (*models.User, error) {
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return nil, err
	}
	return s.FindByID(ctx, id)
}

func (s *UserStore) SetRefreshToken(ctx context.Context, id uint, token string) error {
	return s.updateColumn(ctx, id, "refresh_token", token)
}

func (s *UserStore) ClearRefreshToken(ctx context.Context, id uint) error {
	return s.updateColumn(ctx, id, "refresh_token", gorm.Expr("NULL"))
}

func (s *UserStore) SetPassword(ctx context.Context, id uint, plain string) error {
	hash, err := utils.HashPassword(plain)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.updateColumn(ctx, id, "password", hash)
}

func (s *UserStore) VerifyPassword(u *models.User, plain string) bool {
	return utils.CheckPassword(plain, u.Password)
}

func (s *UserStore) updateColumn(ctx context.Context, id uint, column string, value interface{}) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).UpdateColumn(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	// MySQL reports zero affected rows when the value is unchanged.
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

// IsNotFound reports whether err means the user does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicate reports whether err is a unique constraint violation. Besides
// GORM's translated error it recognizes the raw driver errors, which is what
// a *gorm.DB opened without TranslateError hands back.
func IsDuplicate(err error) bool {
	if errors.Is(err, ErrDuplicate) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062 // ER_DUP_ENTRY
	}
	return false
}
