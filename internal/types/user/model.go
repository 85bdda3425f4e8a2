package user

import (
	"time"

	"github.com/antonminaichev/foodflow/internal/util/geo"
)

type Role string

const (
	RoleDonor     Role = "donor"
	RoleReceiver  Role = "receiver"
	RoleVolunteer Role = "volunteer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleDonor, RoleReceiver, RoleVolunteer:
		return true
	}
	return false
}

type User struct {
	ID           string     `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         Role       `db:"role" json:"role"`
	ProfilePic   string     `db:"profile_pic" json:"profilePic"`
	MobileNumber string     `db:"mobile_number" json:"mobileNumber,omitempty"`
	Location     *geo.Point `db:"-" json:"location,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    *time.Time `db:"updated_at" json:"updatedAt,omitempty"`
}

// Update carries the profile fields to overwrite; nil fields are left untouched.
type Update struct {
	Name         *string
	Role         *Role
	ProfilePic   *string
	MobileNumber *string
	Location     *geo.Point
	PasswordHash *string
	UpdatedAt    time.Time
}

// Public is the profile shown to other users.
type Public struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Role       Role       `json:"role"`
	ProfilePic string     `json:"profilePic"`
	Location   *geo.Point `json:"location,omitempty"`
}

func (u *User) Public() Public {
	return Public{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		ProfilePic: u.ProfilePic,
		Location:   u.Location,
	}
}
