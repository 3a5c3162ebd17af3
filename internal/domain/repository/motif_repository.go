// Package repository 定义数据访问层接口
package repository

import (
	"context"
	"time"

	"rpg-motif-api/internal/domain/entity"
)

// MotifFilter 主题列表过滤条件，各字段相互独立，AND 语义
type MotifFilter struct {
	Category     entity.MotifCategory
	Scope        entity.MotifScope
	Lifecycle    entity.MotifLifecycle
	MinIntensity *float64
	MaxIntensity *float64
	RegionID     string
	PlayerID     string
	ActiveOnly   bool
	Tags         []string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time

	Limit  int
	Offset int
}

// MotifStats 主题统计汇总
type MotifStats struct {
	Total         int64                           `json:"total"`
	Active        int64                           `json:"active"`
	Canonical     int64                           `json:"canonical"`
	MeanIntensity float64                         `json:"mean_intensity"`
	ByCategory    map[entity.MotifCategory]int64  `json:"by_category"`
	ByScope       map[entity.MotifScope]int64     `json:"by_scope"`
	ByLifecycle   map[entity.MotifLifecycle]int64 `json:"by_lifecycle"`
}

// MotifRepository 主题存储端口
type MotifRepository interface {
	// Create 写入新主题
	Create(ctx context.Context, m *entity.Motif) error
	// GetByID 按 ID 获取主题，未找到返回 (nil, nil)
	GetByID(ctx context.Context, id string) (*entity.Motif, error)
	// Update 写回主题。以读取时的 version 为条件做乐观并发控制，
	// 版本不匹配返回 CodeVersionConflict 错误，成功后 version 自增。
	Update(ctx context.Context, m *entity.Motif) error
	// Delete 删除主题，返回是否实际删除
	Delete(ctx context.Context, id string) (bool, error)
	// List 按过滤条件列出主题
	List(ctx context.Context, filter *MotifFilter) ([]*entity.Motif, int64, error)
	// ListActive 列出全部非终止态主题
	ListActive(ctx context.Context) ([]*entity.Motif, error)
	// ListExpired 列出 end_time 早于 now 的主题
	ListExpired(ctx context.Context, now time.Time) ([]*entity.Motif, error)
	// FindByPlayerAndCategory 查找玩家名下指定类别的活跃主题，用于强化去重
	FindByPlayerAndCategory(ctx context.Context, playerID string, category entity.MotifCategory) (*entity.Motif, error)
	// DeleteTerminalBefore 清除在 cutoff 之前进入终止态且已过期的主题，返回清除数量
	DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error)
	// Stats 统计汇总
	Stats(ctx context.Context) (*MotifStats, error)
}
