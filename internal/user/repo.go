package user

import (
	"context"

	"github.com/antonminaichev/foodflow/internal/types/user"
)

type UserRepository interface {
	CreateUser(ctx context.Context, u *user.User) error
	FindUserByEmail(ctx context.Context, email string) (*user.User, error)
	FindUserByID(ctx context.Context, id string) (*user.User, error)
	UpdateUser(ctx context.Context, id string, upd user.Update) (*user.User, error)
	DeleteUser(ctx context.Context, id string) error
}
