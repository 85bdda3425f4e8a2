// internal/user/service.go
package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/antonminaichev/foodflow/internal/storage"
	"github.com/antonminaichev/foodflow/internal/types/user"
	"github.com/antonminaichev/foodflow/internal/util/geo"
)

const minPasswordLen = 8

var (
	ErrUserExists       = errors.New("user already exists")
	ErrInvalidCreds     = errors.New("invalid credentials")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrUserNotFound     = errors.New("user not found")
	ErrMissingFields    = errors.New("missing required fields")
	ErrInvalidRole      = errors.New("invalid role")
	ErrInvalidLocation  = errors.New("invalid location")
)

type Service struct {
	repo      UserRepository
	jwtSecret []byte
	jwtTTL    time.Duration
	now       func() time.Time
}

func NewService(repo UserRepository, jwtSecret []byte, jwtTTL time.Duration) *Service {
	return &Service{repo: repo, jwtSecret: jwtSecret, jwtTTL: jwtTTL, now: time.Now}
}

type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	Role       user.Role
	ProfilePic string
	Location   *geo.Point
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*user.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	if strings.TrimSpace(in.Name) == "" || in.Email == "" || in.Password == "" || in.Role == "" {
		return nil, ErrMissingFields
	}
	if !in.Role.Valid() {
		return nil, ErrInvalidRole
	}
	if len(in.Password) < minPasswordLen {
		return nil, ErrPasswordTooShort
	}
	if in.Location != nil {
		if err := in.Location.Validate(); err != nil {
			return nil, ErrInvalidLocation
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &user.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         in.Role,
		ProfilePic:   in.ProfilePic,
		Location:     in.Location,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return u, nil
}

// Authenticate returns a signed token whose subject is the user id.
func (s *Service) Authenticate(ctx context.Context, email, password string) (string, *user.User, error) {
	u, err := s.repo.FindUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return "", nil, ErrInvalidCreds
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCreds
	}
	now := s.now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   u.ID,
		ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtTTL)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, err
	}
	return signed, u, nil
}

func (s *Service) Get(ctx context.Context, id string) (*user.User, error) {
	u, err := s.repo.FindUserByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

type UpdateInput struct {
	Name         *string
	Role         *user.Role
	ProfilePic   *string
	MobileNumber *string
	Location     *geo.Point
	Password     *string
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*user.User, error) {
	upd := user.Update{
		Name:         in.Name,
		Role:         in.Role,
		ProfilePic:   in.ProfilePic,
		MobileNumber: in.MobileNumber,
		Location:     in.Location,
		UpdatedAt:    s.now().UTC(),
	}
	if in.Role != nil && !in.Role.Valid() {
		return nil, ErrInvalidRole
	}
	if in.Location != nil {
		if err := in.Location.Validate(); err != nil {
			return nil, ErrInvalidLocation
		}
	}
	if in.Password != nil {
		if len(*in.Password) < minPasswordLen {
			return nil, ErrPasswordTooShort
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		h := string(hash)
		upd.PasswordHash = &h
	}
	u, err := s.repo.UpdateUser(ctx, id, upd)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.repo.DeleteUser(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
