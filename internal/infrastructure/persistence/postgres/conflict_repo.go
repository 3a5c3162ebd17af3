// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"rpg-motif-api/internal/domain/entity"
	"rpg-motif-api/pkg/errors"
)

// ConflictRepository 冲突记录仓储实现
type ConflictRepository struct {
	client *Client
}

// NewConflictRepository 创建冲突记录仓储
func NewConflictRepository(client *Client) *ConflictRepository {
	return &ConflictRepository{client: client}
}

// Create 创建冲突记录
func (r *ConflictRepository) Create(ctx context.Context, c *entity.MotifConflict) error {
	ctx, span := tracer.Start(ctx, "postgres.ConflictRepository.Create")
	defer span.End()
	defer observeQuery("conflict_create", time.Now())

	db := getDB(ctx, r.client.db)
	if err := db.Create(c).Error; err != nil {
		span.RecordError(err)
		return errors.NewStorage(err, "create conflict")
	}
	return nil
}

// Update 写回冲突记录
func (r *ConflictRepository) Update(ctx context.Context, c *entity.MotifConflict) error {
	ctx, span := tracer.Start(ctx, "postgres.ConflictRepository.Update")
	defer span.End()
	defer observeQuery("conflict_update", time.Now())

	db := getDB(ctx, r.client.db)

	c.UpdatedAt = time.Now().UTC()
	res := db.Model(&entity.MotifConflict{}).
		Where("id = ?", c.ID).
		Select("*").
		Omit("id", "detected_at").
		Updates(c)
	if res.Error != nil {
		span.RecordError(res.Error)
		return errors.NewStorage(res.Error, "update conflict")
	}
	if res.RowsAffected == 0 {
		return errors.NewNotFound("conflict", c.ID)
	}
	return nil
}

// GetActiveByPairKey 按规范化主题对键查找活跃冲突，未找到返回 (nil, nil)
func (r *ConflictRepository) GetActiveByPairKey(ctx context.Context, pairKey string) (*entity.MotifConflict, error) {
	ctx, span := tracer.Start(ctx, "postgres.ConflictRepository.GetActiveByPairKey")
	defer span.End()
	defer observeQuery("conflict_get_pair", time.Now())

	db := getDB(ctx, r.client.db)

	var c entity.MotifConflict
	err := db.
		Where("pair_key = ? AND status = ?", pairKey, entity.ConflictActive).
		First(&c).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, errors.NewStorage(err, "get conflict by pair key")
	}
	return &c, nil
}

// ListByStatus 按状态列出冲突记录
func (r *ConflictRepository) ListByStatus(ctx context.Context, status entity.ConflictStatus) ([]*entity.MotifConflict, error) {
	ctx, span := tracer.Start(ctx, "postgres.ConflictRepository.ListByStatus")
	defer span.End()
	defer observeQuery("conflict_list", time.Now())

	db := getDB(ctx, r.client.db)

	var conflicts []*entity.MotifConflict
	err := db.
		Where("status = ?", status).
		Order("detected_at DESC").
		Find(&conflicts).Error
	if err != nil {
		span.RecordError(err)
		return nil, errors.NewStorage(err, "list conflicts")
	}
	return conflicts, nil
}

// DeleteForMotif 删除涉及指定主题的全部冲突记录
func (r *ConflictRepository) DeleteForMotif(ctx context.Context, motifID string) error {
	ctx, span := tracer.Start(ctx, "postgres.ConflictRepository.DeleteForMotif")
	defer span.End()
	defer observeQuery("conflict_delete_for_motif", time.Now())

	db := getDB(ctx, r.client.db)

	err := db.
		Where("motif_a_id = ? OR motif_b_id = ?", motifID, motifID).
		Delete(&entity.MotifConflict{}).Error
	if err != nil {
		span.RecordError(err)
		return errors.NewStorage(err, "delete conflicts for motif")
	}
	return nil
}
