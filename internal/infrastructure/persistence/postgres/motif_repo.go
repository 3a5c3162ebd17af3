// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"rpg-motif-api/internal/domain/entity"
	"rpg-motif-api/internal/domain/repository"
	"rpg-motif-api/pkg/errors"
	"rpg-motif-api/pkg/metrics"
)

// 终止态生命周期，查询里反复使用
var terminalLifecycles = []entity.MotifLifecycle{
	entity.LifecycleDormant,
	entity.LifecycleConcluded,
}

// MotifRepository 主题仓储实现
type MotifRepository struct {
	client *Client
}

// NewMotifRepository 创建主题仓储
func NewMotifRepository(client *Client) *MotifRepository {
	return &MotifRepository{client: client}
}

// Create 创建主题
func (r *MotifRepository) Create(ctx context.Context, m *entity.Motif) error {
	ctx, span := tracer.Start(ctx, "postgres.MotifRepository.Create")
	defer span.End()
	defer observeQuery("motif_create", time.Now())

	db := getDB(ctx, r.client.db)
	if err := db.Create(m).Error; err != nil {
		span.RecordError(err)
		return errors.NewStorage(err, "create motif")
	}
	return nil
}

// GetByID 根据 ID 获取主题，未找到返回 (nil, nil)
func (r *MotifRepository) GetByID(ctx context.Context, id string) (*entity.Motif, error) {
	ctx, span := tracer.Start(ctx, "postgres.MotifRepository.GetByID")
	defer span.End()
	defer observeQuery("motif_get", time.Now())

	db := getDB(ctx, r.client.db)

	var m entity.Motif
	err := db.Where("id = ?", id).First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, errors.NewStorage(err, "get motif")
	}
	return &m, nil
}

// Update 乐观并发写回：以读取时的 version 为条件，成功后 version 自增。
// 版本不匹配时区分“记录不存在”和“并发修改”两种结果。
func (r *MotifRepository) Update(ctx context.Context, m *entity.Motif) error {
	ctx, span := tracer.Start(ctx, "postgres.MotifRepository.Update")
	defer span.End()
	defer observeQuery("motif_update", time.Now())

	db := getDB(ctx, r.client.db)

	expected := m.Version
	m.Version = expected + 1
	m.UpdatedAt = time.Now().UTC()

	res := db.Model(&entity.Motif{}).
		Where("id = ? AND version = ?", m.ID, expected).
		Select("*").
		Omit("id", "created_at").
		Updates(m)
	if res.Error != nil {
		m.Version = expected
		span.RecordError(res.Error)
		return errors.NewStorage(res.Error, "update motif")
	}
	if res.RowsAffected == 0 {
		m.Version = expected
		var count int64
		if err := db.Model(&entity.Motif{}).Where("id = ?", m.ID).Count(&count).Error; err != nil {
			span.RecordError(err)
			return errors.NewStorage(err, "update motif")
		}
		if count == 0 {
			return errors.NewNotFound("motif", m.ID)
		}
		return errors.NewVersionConflict(m.ID, expected)
	}
	return nil
}

// Delete 删除主题，返回是否实际删除
func (r *MotifRepository) Delete(ctx context.Context, id string) (bool, error) {
	ctx, span := tracer.Start(ctx, "postgres.MotifRepository.Delete")
	defer span.End()
	defer observeQuery("motif_delete", time.Now())

	db := getDB(ctx, r.client.db)

	res := db.Where("id = ?", id).Delete(&entity.Motif{})
	if res.Error != nil {
		span.RecordError(res.Error)
		return false, errors.NewStorage(res.Error, "delete motif")
	}
	return res.RowsAffected > 0, nil
}

// List 按过滤条件列出主题
func (r *MotifRepository) List(ctx context.Context, filter *repository.MotifFilter) ([]*entity.Motif, int64, error) {
	ctx, span := tracer.Start(ctx, "postgres.MotifRepository.List")
	defer span.End()
	defer observeQuery("motif_list", time.Now())

	db := getDB(ctx, r.client.db)
	query := applyFilter(db.Model(&entity.Motif{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, 0, errors.NewStorage(err, "count motifs")
	}

	var motifs []*entity.Motif
	err := query.
		Order("intensity DESC, created_at ASC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&motifs).Error
	if err != nil {
		span.RecordError(err)
		return nil, 0, errors.NewStorage(err, "list motifs")
	}
	return motifs, total, nil
}

// applyFilter 逐字段拼接过滤条件，AND 语义
func applyFilter(q *gorm.DB, filter *repository.MotifFilter) *gorm.DB {
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Scope != "" {
		q = q.Where("scope = ?", filter.Scope)
	}
	if filter.Lifecycle != "" {
		q = q.Where("lifecycle = ?", filter.Lifecycle)
	}
	if filter.MinIntensity != nil {
		q = q.Where("intensity >= ?", *filter.MinIntensity)
	}
	if filter.MaxIntensity != nil {
		q = q.Where("intensity <= ?", *filter.MaxIntensity)
	}
	if filter.RegionID != "" {
		q = q.Where("location->>'region_id' = ?", filter.RegionID)
	}
	if filter.PlayerID != "" {
		q = q.Where("player_id = ?", filter.PlayerID)
	}
	if filter.ActiveOnly {
		q = q.Where("lifecycle NOT IN ?", terminalLifecycles)
	}
	for _, tag := range filter.Tags {
		q = q.Where("tags::jsonb @> ?", tagContainment(tag))
	}
	if filter.CreatedAfter != nil {
		q = q.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		q = q.Where("created_at <= ?", *filter.CreatedBefore)
	}
	return q
}

// tagContainment 生成单标签的 JSONB 包含查询实参，标签内容需经 JSON 转义
func tagContainment(tag string) string {
	b, _ := json.Marshal([]string{tag})
	return string(b)
}

// ListActive 列出全部非终止态主题
func (r *MotifRepository) ListActive(ctx context.Context) ([]*entity.Motif, error) {
	ctx, span := tracer.Start(ctx, "postgres.MotifRepository.ListActive")
	defer span.End()
	defer observeQuery("motif_list_active", time.Now())

	db := getDB(ctx, r.client.db)

	var motifs []*entity.Motif
	err := db.
		Where("lifecycle NOT IN ?", terminalLifecycles).
		Order("intensity DESC, created_at ASC").
		Find(&motifs).Error
	if err != nil {
		span.RecordError(err)
		return nil, errors.NewStorage(err, "list active motifs")
	}
	return motifs, nil
}

// ListExpired 列出 end_time 已过的主题
func (r *MotifRepository) ListExpired(ctx context.Context, now time.Time) ([]*entity.Motif, error) {
	ctx, span := tracer.Start(ctx, "postgres.MotifRepository.ListExpired")
	defer span.End()
	defer observeQuery("motif_list_expired", time.Now())

	db := getDB(ctx, r.client.db)

	var motifs []*entity.Motif
	err := db.
		Where("end_time IS NOT NULL AND end_time < ?", now).
		Find(&motifs).Error
	if err != nil {
		span.RecordError(err)
		return nil, errors.NewStorage(err, "list expired motifs")
	}
	return motifs, nil
}

// FindByPlayerAndCategory 查找玩家名下指定类别的活跃主题，未找到返回 (nil, nil)
func (r *MotifRepository) FindByPlayerAndCategory(ctx context.Context, playerID string, category entity.MotifCategory) (*entity.Motif, error) {
	ctx, span := tracer.Start(ctx, "postgres.MotifRepository.FindByPlayerAndCategory")
	defer span.End()
	defer observeQuery("motif_find_player_category", time.Now())

	db := getDB(ctx, r.client.db)

	var m entity.Motif
	err := db.
		Where("player_id = ? AND category = ? AND scope = ?", playerID, category, entity.ScopePlayerCharacter).
		Where("lifecycle NOT IN ?", terminalLifecycles).
		Order("created_at ASC").
		First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, errors.NewStorage(err, "find motif by player and category")
	}
	return &m, nil
}

// DeleteTerminalBefore 清除在 cutoff 之前更新的终止态主题，返回清除数量。
// 常驻主题永不清除。
func (r *MotifRepository) DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, span := tracer.Start(ctx, "postgres.MotifRepository.DeleteTerminalBefore")
	defer span.End()
	defer observeQuery("motif_cleanup", time.Now())

	db := getDB(ctx, r.client.db)

	res := db.
		Where("lifecycle IN ?", terminalLifecycles).
		Where("is_canonical = ?", false).
		Where("updated_at < ?", cutoff).
		Delete(&entity.Motif{})
	if res.Error != nil {
		span.RecordError(res.Error)
		return 0, errors.NewStorage(res.Error, "delete terminal motifs")
	}
	return res.RowsAffected, nil
}

// Stats 统计汇总
func (r *MotifRepository) Stats(ctx context.Context) (*repository.MotifStats, error) {
	ctx, span := tracer.Start(ctx, "postgres.MotifRepository.Stats")
	defer span.End()
	defer observeQuery("motif_stats", time.Now())

	db := getDB(ctx, r.client.db)
	stats := &repository.MotifStats{
		ByCategory:  make(map[entity.MotifCategory]int64),
		ByScope:     make(map[entity.MotifScope]int64),
		ByLifecycle: make(map[entity.MotifLifecycle]int64),
	}

	type aggregate struct {
		Total         int64
		Active        int64
		Canonical     int64
		MeanIntensity float64
	}
	var agg aggregate
	err := db.Model(&entity.Motif{}).
		Select(
			"COUNT(*) AS total, "+
				"COUNT(*) FILTER (WHERE lifecycle NOT IN ?) AS active, "+
				"COUNT(*) FILTER (WHERE is_canonical) AS canonical, "+
				"COALESCE(AVG(intensity), 0) AS mean_intensity",
			terminalLifecycles,
		).
		Scan(&agg).Error
	if err != nil {
		span.RecordError(err)
		return nil, errors.NewStorage(err, "aggregate motif stats")
	}
	stats.Total = agg.Total
	stats.Active = agg.Active
	stats.Canonical = agg.Canonical
	stats.MeanIntensity = agg.MeanIntensity

	type bucket struct {
		Key   string
		Count int64
	}
	groupInto := func(column string, assign func(key string, count int64)) error {
		var rows []bucket
		err := db.Model(&entity.Motif{}).
			Select(column + " AS key, COUNT(*) AS count").
			Group(column).
			Scan(&rows).Error
		if err != nil {
			return err
		}
		for _, row := range rows {
			assign(row.Key, row.Count)
		}
		return nil
	}

	if err := groupInto("category", func(k string, c int64) {
		stats.ByCategory[entity.MotifCategory(k)] = c
	}); err != nil {
		span.RecordError(err)
		return nil, errors.NewStorage(err, "group motifs by category")
	}
	if err := groupInto("scope", func(k string, c int64) {
		stats.ByScope[entity.MotifScope(k)] = c
	}); err != nil {
		span.RecordError(err)
		return nil, errors.NewStorage(err, "group motifs by scope")
	}
	if err := groupInto("lifecycle", func(k string, c int64) {
		stats.ByLifecycle[entity.MotifLifecycle(k)] = c
	}); err != nil {
		span.RecordError(err)
		return nil, errors.NewStorage(err, "group motifs by lifecycle")
	}

	return stats, nil
}

// observeQuery 记录查询耗时
func observeQuery(operation string, start time.Time) {
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
