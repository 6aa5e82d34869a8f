package postgres

import (
	"github.com/tillworks/pos/internal/domain"
)

func toDomainUser(rec userModel) domain.User {
	secret := ""
	if rec.TOTPSecret != nil {
		secret = *rec.TOTPSecret
	}
	return domain.User{
		UserID:       rec.UserID,
		BusinessID:   rec.BusinessID,
		Email:        rec.Email,
		Name:         rec.Name,
		PasswordHash: rec.PasswordHash,
		Role:         domain.Role(rec.Role),
		TOTPSecret:   secret,
		IsActive:     rec.IsActive,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}
}

func toDomainSession(rec sessionModel) domain.Session {
	return domain.Session{
		Token:     rec.Token,
		UserID:    rec.UserID,
		CreatedAt: rec.CreatedAt,
		ExpiresAt: rec.ExpiresAt,
	}
}

func toDomainAuditEntry(rec auditLogModel) domain.AuditEntry {
	ip := ""
	if rec.IPAddress != nil {
		ip = *rec.IPAddress
	}
	return domain.AuditEntry{
		ID:         rec.ID,
		BusinessID: rec.BusinessID,
		UserID:     rec.UserID,
		Action:     rec.Action,
		Detail:     rec.Detail,
		IPAddress:  ip,
		CreatedAt:  rec.CreatedAt,
	}
}

func nullableString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
