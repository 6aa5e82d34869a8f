package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tillworks/pos/internal/domain"
	"gorm.io/gorm"
)

type credentialRepository struct {
	db *gorm.DB
}

func (r *credentialRepository) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string, updatedAt time.Time) error {
	return r.updateUser(ctx, userID, map[string]any{
		"password_hash": passwordHash,
		"updated_at":    updatedAt,
	})
}

func (r *credentialRepository) SetTOTPSecret(ctx context.Context, userID uuid.UUID, secret string, updatedAt time.Time) error {
	return r.updateUser(ctx, userID, map[string]any{
		"totp_secret": nullableString(secret),
		"updated_at":  updatedAt,
	})
}

func (r *credentialRepository) updateUser(ctx context.Context, userID uuid.UUID, values map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("user_id = ?", userID).
		Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
