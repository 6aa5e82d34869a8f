package postgres

import (
	"time"

	"github.com/google/uuid"
)

type userModel struct {
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;default:gen_random_uuid();primaryKey"`
	BusinessID   uuid.UUID `gorm:"column:business_id;type:uuid"`
	Email        string    `gorm:"column:email"`
	Name         string    `gorm:"column:name"`
	PasswordHash string    `gorm:"column:password_hash"`
	Role         string    `gorm:"column:role"`
	TOTPSecret   *string   `gorm:"column:totp_secret"`
	IsActive     bool      `gorm:"column:is_active"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

type sessionModel struct {
	Token     string    `gorm:"column:token;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id"`
	CreatedAt time.Time `gorm:"column:created_at"`
	ExpiresAt time.Time `gorm:"column:expires_at"`
}

func (sessionModel) TableName() string { return "sessions" }

type auditLogModel struct {
	ID         int64      `gorm:"column:id;primaryKey"`
	BusinessID uuid.UUID  `gorm:"column:business_id;type:uuid"`
	UserID     *uuid.UUID `gorm:"column:user_id"`
	Action     string     `gorm:"column:action"`
	Detail     string     `gorm:"column:detail"`
	IPAddress  *string    `gorm:"column:ip_address"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
}

func (auditLogModel) TableName() string { return "audit_logs" }
