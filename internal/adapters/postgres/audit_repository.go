package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tillworks/pos/internal/domain"
	"gorm.io/gorm"
)

type auditRepository struct {
	db *gorm.DB
}

func (r *auditRepository) Insert(ctx context.Context, entry domain.AuditEntry) error {
	rec := auditLogModel{
		BusinessID: entry.BusinessID,
		UserID:     entry.UserID,
		Action:     entry.Action,
		Detail:     entry.Detail,
		IPAddress:  nullableString(entry.IPAddress),
		CreatedAt:  entry.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(&rec).Error
}

func (r *auditRepository) ListByBusiness(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]domain.AuditEntry, error) {
	var rows []auditLogModel
	query := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.AuditEntry, 0, len(rows))
	for _, item := range rows {
		result = append(result, toDomainAuditEntry(item))
	}
	return result, nil
}

func (r *auditRepository) DeleteOlderThan(ctx context.Context, businessID uuid.UUID, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Where("created_at < ?", cutoff).
		Delete(&auditLogModel{})
	return res.RowsAffected, res.Error
}
