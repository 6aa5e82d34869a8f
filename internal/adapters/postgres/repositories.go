package postgres

import (
	"github.com/tillworks/pos/internal/ports"
	"gorm.io/gorm"
)

type Repositories struct {
	Users       ports.UserRepository
	Sessions    ports.SessionRepository
	Audit       ports.AuditRepository
	Credentials ports.CredentialRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:       &userRepository{db: db},
		Sessions:    &sessionRepository{db: db},
		Audit:       &auditRepository{db: db},
		Credentials: &credentialRepository{db: db},
	}
}
