// Package users stores accounts and their skill profiles in Postgres.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/spigell/hackmatch/internal/keywords"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNotFound           = errors.New("user not found")
	ErrInvalidUser        = errors.New("invalid user data")
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Skills       []string  `gorm:"serializer:json" json:"skills"`
	CreatedAt    time.Time `json:"created_at"`
}

// Registration is the input of Register.
type Registration struct {
	Username string   `validate:"required,min=3,max=64"`
	Email    string   `validate:"required,email"`
	Password string   `validate:"required,min=8,max=72"`
	Skills   []string `validate:"dive,max=64"`
}

type Store struct {
	db       *gorm.DB
	cost     int
	validate *validator.Validate
}

type Option func(*Store)

// WithCost sets the bcrypt cost of new password hashes.
func WithCost(cost int) Option {
	return func(s *Store) {
		s.cost = cost
	}
}

func NewStore(db *gorm.DB, opts ...Option) *Store {
	s := &Store{
		db:       db,
		cost:     bcrypt.DefaultCost,
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open connects to Postgres. Driver errors for unique violations are
// translated to gorm.ErrDuplicatedKey.
func Open(dsn string, opts ...Option) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return NewStore(db, opts...), nil
}

func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&User{}); err != nil {
		return fmt.Errorf("migrate users: %w", err)
	}
	return nil
}

func (s *Store) Register(ctx context.Context, reg Registration) (*User, error) {
	reg.Username = strings.TrimSpace(reg.Username)
	reg.Email = strings.ToLower(strings.TrimSpace(reg.Email))
	if err := s.validate.Struct(reg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidUser, err)
	}

	var count int64
	err := s.db.WithContext(ctx).Model(&User{}).
		Where("username = ? OR email = ?", reg.Username, reg.Email).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if count > 0 {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		Username:     reg.Username,
		Email:        reg.Email,
		PasswordHash: string(hash),
		Skills:       keywords.Normalize(reg.Skills).Sorted(),
	}
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Authenticate returns the user when the password matches. Unknown users and
// wrong passwords are indistinguishable to the caller.
func (s *Store) Authenticate(ctx context.Context, username, password string) (*User, error) {
	var u User
	err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &u, nil
}

func (s *Store) Get(ctx context.Context, id uint) (*User, error) {
	var u User
	err := s.db.WithContext(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return &u, nil
}

// Update changes the username and/or the skills. A nil argument leaves the
// field untouched.
func (s *Store) Update(ctx context.Context, id uint, username *string, skills []string) (*User, error) {
	var columns []string
	patch := &User{}

	if username != nil {
		patch.Username = strings.TrimSpace(*username)
		if err := s.validate.Var(patch.Username, "required,min=3,max=64"); err != nil {
			return nil, fmt.Errorf("%w: username: %v", ErrInvalidUser, err)
		}
		columns = append(columns, "username")
	}
	if skills != nil {
		patch.Skills = keywords.Normalize(skills).Sorted()
		columns = append(columns, "skills")
	}
	if len(columns) == 0 {
		return s.Get(ctx, id)
	}

	res := s.db.WithContext(ctx).Model(&User{ID: id}).Select(columns).Updates(patch)
	if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return nil, ErrUserExists
	}
	if res.Error != nil {
		return nil, fmt.Errorf("update user %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	return s.Get(ctx, id)
}
