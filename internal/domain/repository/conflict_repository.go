// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"rpg-motif-api/internal/domain/entity"
)

// ConflictRepository 冲突记录存储端口
type ConflictRepository interface {
	// Create 写入新冲突记录
	Create(ctx context.Context, c *entity.MotifConflict) error
	// Update 写回冲突记录
	Update(ctx context.Context, c *entity.MotifConflict) error
	// GetActiveByPairKey 按规范化主题对键查找活跃冲突，未找到返回 (nil, nil)
	GetActiveByPairKey(ctx context.Context, pairKey string) (*entity.MotifConflict, error)
	// ListByStatus 按状态列出冲突记录
	ListByStatus(ctx context.Context, status entity.ConflictStatus) ([]*entity.MotifConflict, error)
	// DeleteForMotif 删除涉及指定主题的全部冲突记录
	DeleteForMotif(ctx context.Context, motifID string) error
}
