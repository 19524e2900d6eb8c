package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name             string    `gorm:"uniqueIndex;not null"`
	Email            string    `gorm:"uniqueIndex;not null"`
	PasswordHash     *string
	TwoFactorSecret  string  `gorm:"not null;default:''"`
	TwoFactorEnabled bool    `gorm:"not null;default:false"`
	FortyTwoLogin    *string `gorm:"column:forty_two_login;uniqueIndex"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// UserView is the public shape of a user; secrets never leave the service.
type UserView struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	TwoFactorEnabled bool      `json:"isTwoFactorAuthenticationEnabled"`
	FortyTwoLogin    string    `json:"fortyTwoLogin,omitempty"`
}

func NewUserView(u *User) UserView {
	view := UserView{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		TwoFactorEnabled: u.TwoFactorEnabled,
	}
	if u.FortyTwoLogin != nil {
		view.FortyTwoLogin = *u.FortyTwoLogin
	}
	return view
}
