package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AccountStatus string

const (
	StatusPending   AccountStatus = "pending"
	StatusActive    AccountStatus = "active"
	StatusRejected  AccountStatus = "rejected"
	StatusSuspended AccountStatus = "suspended"
)

const (
	RoleAdministrator = "administrator"
	RoleManager       = "manager"
	RoleEmployee      = "employee"
)

// Account is the single login-capable identity. The legacy schema kept auth
// columns on the employee table next to a separate users table; both are
// folded into this one entity.
type Account struct {
	ID                  uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey"`
	Username            string        `json:"username" gorm:"uniqueIndex"`
	Email               string        `json:"email" gorm:"uniqueIndex"`
	FullName            string        `json:"full_name"`
	PhoneNumber         *string       `json:"phone_number"`
	JobTitle            *string       `json:"job_title"`
	Avatar              *string       `json:"avatar"`
	PasswordHash        string        `json:"-"`
	Role                string        `json:"role" gorm:"default:'employee'"`
	Status              AccountStatus `json:"status" gorm:"default:'pending'"`
	RejectReason        *string       `json:"-"`
	LoginAttempts       int           `json:"-" gorm:"default:0"`
	LockedUntil         *time.Time    `json:"-"`
	ForcePasswordChange bool          `json:"force_password_change" gorm:"default:false"`
	CreatedAt           time.Time     `json:"created_at"`
	LastLogin           *time.Time    `json:"-"`
	LoginCount          int           `json:"-" gorm:"default:0"`
}

func (a *Account) TableName() string {
	return "account"
}

// BeforeCreate assigns the key in the application rather than relying on a
// database default, so the model works on every supported driver.
func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
