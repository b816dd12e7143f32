package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"clientportal/internal/db"
)

var ErrUserNotFound = errors.New("user not found")

var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("password", validatePassword)
	return v
}

func validatePassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()

	if len(password) < 8 {
		return false
	}
	if !strings.ContainsAny(password, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		return false
	}
	if !strings.ContainsAny(password, "abcdefghijklmnopqrstuvwxyz") {
		return false
	}
	if !strings.ContainsAny(password, "0123456789") {
		return false
	}
	return true
}

type User struct {
	ID        int64     `db:"id" json:"id"`
	Email     string    `db:"email" json:"email" validate:"required,email,max=255"`
	Password  string    `db:"password" json:"-" validate:"required,password"`
	Name      string    `db:"name" json:"name" validate:"max=255"`
	Role      Role      `db:"role" json:"role" validate:"oneof=admin client"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type UserStore struct {
	db db.Queryer
}

func NewUserStore(q db.Queryer) *UserStore {
	return &UserStore{db: q}
}

// CreateUser validates and stores a user with a bcrypt-hashed password.
func (s *UserStore) CreateUser(ctx context.Context, email, password, name string, role Role) (*User, error) {
	user := &User{Email: email, Password: password, Name: name, Role: role}
	if err := Validate.Struct(user); err != nil {
		return nil, fmt.Errorf("invalid user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	err = s.db.GetContext(ctx, user, `
		INSERT INTO users (email, password, name, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, password, name, role, created_at
	`, email, string(hashed), name, role)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *UserStore) GetUserByID(ctx context.Context, id int64) (*User, error) {
	user := &User{}
	err := s.db.GetContext(ctx, user, `
		SELECT id, email, password, name, role, created_at FROM users WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	user := &User{}
	err := s.db.GetContext(ctx, user, `
		SELECT id, email, password, name, role, created_at FROM users WHERE email = $1
	`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// DisplayName is the user's name, or their email when no name is set.
func (s *UserStore) DisplayName(ctx context.Context, id int64) (string, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return "", err
	}
	if user.Name != "" {
		return user.Name, nil
	}
	return user.Email, nil
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
