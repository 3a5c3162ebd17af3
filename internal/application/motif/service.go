// Package motif 提供主题的 CRUD 编排服务
package motif

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel"

	"rpg-motif-api/internal/application/evolution"
	"rpg-motif-api/internal/application/synthesis"
	"rpg-motif-api/internal/config"
	"rpg-motif-api/internal/domain/entity"
	"rpg-motif-api/internal/domain/repository"
	"rpg-motif-api/internal/domain/service"
	"rpg-motif-api/pkg/errors"
	"rpg-motif-api/pkg/logger"
	"rpg-motif-api/pkg/metrics"
)

var tracer = otel.Tracer("motif")

// 缓存键前缀
const (
	cacheKeyMotif       = "motif:id:"
	cacheKeyListPattern = "motif:list:*"
)

// KVCache 只读加速的键值缓存端口。
// 缓存永远 fail-open：任何缓存故障都回落到存储层，不影响正确性。
type KVCache interface {
	GetOrLoadSafe(ctx context.Context, key string, ttl time.Duration, loader func() (interface{}, error)) ([]byte, error)
	Delete(ctx context.Context, keys ...string) error
	InvalidatePattern(ctx context.Context, pattern string) error
}

// EffectEventPublisher 效果事件发布端口
type EffectEventPublisher interface {
	PublishEffects(ctx context.Context, m *entity.Motif, results map[entity.EffectTarget][]synthesis.EffectResult) error
}

// CreateResult 创建结果；命中玩家同类别去重时 Reinforced 为真
type CreateResult struct {
	Motif      *entity.Motif `json:"motif"`
	Reinforced bool          `json:"reinforced"`
}

// UpdateInput 部分更新输入，nil 字段不修改
type UpdateInput struct {
	Name               *string
	Description        *string
	Intensity          *float64
	Lifecycle          *entity.MotifLifecycle
	Theme              *string
	Tone               *string
	NarrativeDirection *string
	Descriptors        *[]string
	Effects            *[]entity.MotifEffect
	EvolutionRules     *[]entity.MotifEvolutionRule
	EndTime            *time.Time
	Metadata           *map[string]string
	Tags               *[]string
}

// Service 主题服务
type Service struct {
	motifs    repository.MotifRepository
	conflicts repository.ConflictRepository
	tx        repository.Transactor
	engine    *evolution.Engine
	cache     KVCache
	publisher EffectEventPublisher
	cfg       *config.Config
	rng       *rand.Rand
	now       func() time.Time
}

// NewService 创建主题服务
func NewService(
	motifs repository.MotifRepository,
	conflicts repository.ConflictRepository,
	tx repository.Transactor,
	engine *evolution.Engine,
	cache KVCache,
	publisher EffectEventPublisher,
	cfg *config.Config,
) *Service {
	return &Service{
		motifs:    motifs,
		conflicts: conflicts,
		tx:        tx,
		engine:    engine,
		cache:     cache,
		publisher: publisher,
		cfg:       cfg,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock 替换时钟，测试用
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create 校验并存储新主题，补齐缺省的派生字段。
// 玩家作用域下已有同类别活跃主题时强化既有主题而不是创建重复。
func (s *Service) Create(ctx context.Context, m *entity.Motif) (*CreateResult, error) {
	ctx, span := tracer.Start(ctx, "motif.Service.Create")
	defer span.End()

	s.fillDerived(m)
	if err := m.Validate(); err != nil {
		return nil, err
	}

	// 同玩家同类别去重：强化优先于新建
	if m.Scope == entity.ScopePlayerCharacter {
		reinforced, err := s.engine.Reinforce(ctx, m.PlayerID, m.Category, m.Intensity/2,
			fmt.Sprintf("reinforced by new %s motif", m.Category))
		if err != nil {
			return nil, err
		}
		if reinforced != nil {
			s.invalidate(ctx, reinforced.ID)
			return &CreateResult{Motif: reinforced, Reinforced: true}, nil
		}
	}

	if err := s.motifs.Create(ctx, m); err != nil {
		return nil, err
	}
	metrics.MotifsCreatedTotal.WithLabelValues(string(m.Category), string(m.Scope)).Inc()
	s.invalidate(ctx, m.ID)

	logger.Info(ctx, "motif created",
		"motif_id", m.ID, "category", m.Category, "scope", m.Scope, "intensity", m.Intensity)
	return &CreateResult{Motif: m}, nil
}

// fillDerived 补齐创建时缺省的派生字段
func (s *Service) fillDerived(m *entity.Motif) {
	if m.Name == "" && m.Category.IsValid() && m.Scope.IsValid() {
		m.Name = service.GenerateName(s.rng, m.Category, m.Scope)
	}
	if m.Description == "" {
		m.Description = service.GenerateDescription(m.Category, m.Intensity)
	}
	if m.Theme == "" {
		m.Theme = service.ThemeFor(m.Category)
	}
	if m.Tone == "" {
		m.Tone = m.Category.Tone()
	}
	if m.NarrativeDirection == "" {
		m.NarrativeDirection = service.NarrativeDirectionFor(m.Category, m.Intensity)
	}
	if len(m.Descriptors) == 0 {
		m.Descriptors = service.GenerateDescriptors(m.Category, m.Intensity)
	}
	// 非常驻主题按作用域与强度推导时长
	if m.StartTime == nil && !m.IsCanonical {
		now := s.now()
		m.StartTime = &now
	}
	if m.EndTime == nil && m.StartTime != nil && !m.IsCanonical {
		days := service.DurationDays(s.rng, m.Scope, m.Intensity)
		end := m.StartTime.Add(time.Duration(days) * 24 * time.Hour)
		m.EndTime = &end
	}
}

// Get 按 ID 获取主题，经缓存读穿
func (s *Service) Get(ctx context.Context, id string) (*entity.Motif, error) {
	ctx, span := tracer.Start(ctx, "motif.Service.Get")
	defer span.End()

	load := func() (*entity.Motif, error) {
		m, err := s.motifs.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if m == nil {
			return nil, errors.NewNotFound("motif", id)
		}
		return m, nil
	}

	if s.cache == nil {
		return load()
	}

	bytes, err := s.cache.GetOrLoadSafe(ctx, cacheKeyMotif+id, s.cfg.Cache.TTL.Motif, func() (interface{}, error) {
		return load()
	})
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, err
		}
		// 缓存故障 fail-open，直接回源
		metrics.CacheErrors.WithLabelValues("get_or_load").Inc()
		logger.Warn(ctx, "cache degraded, reading from store", "motif_id", id, "error", err.Error())
		return load()
	}

	var m entity.Motif
	if err := json.Unmarshal(bytes, &m); err != nil {
		return load()
	}
	return &m, nil
}

// Update 按部分输入更新主题。
// 生命周期只允许前向变更；回退必须经由显式演化规则。
func (s *Service) Update(ctx context.Context, id string, in *UpdateInput) (*entity.Motif, error) {
	ctx, span := tracer.Start(ctx, "motif.Service.Update")
	defer span.End()

	m, err := s.motifs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errors.NewNotFound("motif", id)
	}

	if in.Lifecycle != nil && !m.Lifecycle.CanAdvanceTo(*in.Lifecycle) {
		return nil, errors.NewValidation([]string{
			fmt.Sprintf("lifecycle: cannot move backward from %s to %s without an evolution rule", m.Lifecycle, *in.Lifecycle),
		})
	}

	applyUpdate(m, in)
	m.UpdatedAt = s.now()

	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := s.motifs.Update(ctx, m); err != nil {
		return nil, err
	}

	s.invalidate(ctx, m.ID)
	return m, nil
}

func applyUpdate(m *entity.Motif, in *UpdateInput) {
	if in.Name != nil {
		m.Name = *in.Name
	}
	if in.Description != nil {
		m.Description = *in.Description
	}
	if in.Intensity != nil {
		m.Intensity = *in.Intensity
	}
	if in.Lifecycle != nil {
		m.Lifecycle = *in.Lifecycle
	}
	if in.Theme != nil {
		m.Theme = *in.Theme
	}
	if in.Tone != nil {
		m.Tone = *in.Tone
	}
	if in.NarrativeDirection != nil {
		m.NarrativeDirection = *in.NarrativeDirection
	}
	if in.Descriptors != nil {
		m.Descriptors = *in.Descriptors
	}
	if in.Effects != nil {
		m.Effects = *in.Effects
	}
	if in.EvolutionRules != nil {
		m.EvolutionRules = *in.EvolutionRules
	}
	if in.EndTime != nil {
		m.EndTime = in.EndTime
	}
	if in.Metadata != nil {
		m.Metadata = *in.Metadata
	}
	if in.Tags != nil {
		m.Tags = *in.Tags
	}
}

// Delete 在同一事务中删除主题及其关联冲突记录，返回是否实际删除
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	ctx, span := tracer.Start(ctx, "motif.Service.Delete")
	defer span.End()

	var deleted bool
	op := func(ctx context.Context) error {
		var err error
		deleted, err = s.motifs.Delete(ctx, id)
		if err != nil || !deleted {
			return err
		}
		return s.conflicts.DeleteForMotif(ctx, id)
	}

	var err error
	if s.tx != nil {
		err = s.tx.WithTransaction(ctx, op)
	} else {
		err = op(ctx)
	}
	if err != nil {
		return false, err
	}
	if !deleted {
		return false, nil
	}

	s.invalidate(ctx, id)
	return true, nil
}

// List 按过滤条件列出主题，条数受配置上限约束
func (s *Service) List(ctx context.Context, filter *repository.MotifFilter) ([]*entity.Motif, int64, error) {
	ctx, span := tracer.Start(ctx, "motif.Service.List")
	defer span.End()

	if filter == nil {
		filter = &repository.MotifFilter{}
	}
	maxLimit := s.cfg.Motif.MaxListLimit
	if maxLimit <= 0 {
		maxLimit = 500
	}
	if filter.Limit <= 0 || filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if err := validateFilter(filter); err != nil {
		return nil, 0, err
	}
	return s.motifs.List(ctx, filter)
}

// validateFilter 过滤条件的形态校验
func validateFilter(f *repository.MotifFilter) error {
	if f.Category != "" && !f.Category.IsValid() {
		return errors.NewInvalidQuery("unknown category: " + string(f.Category))
	}
	if f.Scope != "" && !f.Scope.IsValid() {
		return errors.NewInvalidQuery("unknown scope: " + string(f.Scope))
	}
	if f.Lifecycle != "" && !f.Lifecycle.IsValid() {
		return errors.NewInvalidQuery("unknown lifecycle: " + string(f.Lifecycle))
	}
	if f.MinIntensity != nil && f.MaxIntensity != nil && *f.MinIntensity > *f.MaxIntensity {
		return errors.NewInvalidQuery("min_intensity greater than max_intensity")
	}
	return nil
}

// ApplyEffects 计算主题效果载荷并发布效果事件。
// 事件发布是 fire-and-forget：失败只记日志，不影响返回值。
func (s *Service) ApplyEffects(ctx context.Context, id string, targets []entity.EffectTarget) (map[entity.EffectTarget][]synthesis.EffectResult, error) {
	ctx, span := tracer.Start(ctx, "motif.Service.ApplyEffects")
	defer span.End()

	m, err := s.motifs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errors.NewNotFound("motif", id)
	}

	for _, t := range targets {
		if !t.IsValid() {
			return nil, errors.NewInvalidQuery("unknown effect target: " + string(t))
		}
	}

	results := synthesis.ApplyEffects(m, targets)

	if s.publisher != nil {
		if err := s.publisher.PublishEffects(ctx, m, results); err != nil {
			logger.Warn(ctx, "effect event publish failed", "motif_id", m.ID, "error", err.Error())
		}
	}
	return results, nil
}

// Stats 主题统计汇总
func (s *Service) Stats(ctx context.Context) (*repository.MotifStats, error) {
	ctx, span := tracer.Start(ctx, "motif.Service.Stats")
	defer span.End()

	stats, err := s.motifs.Stats(ctx)
	if err != nil {
		return nil, err
	}
	for scope, count := range stats.ByScope {
		metrics.MotifsActive.WithLabelValues(string(scope)).Set(float64(count))
	}
	return stats, nil
}

// invalidate 清除主题相关缓存，失败只记日志
func (s *Service) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKeyMotif+id); err != nil {
		metrics.CacheErrors.WithLabelValues("delete").Inc()
		logger.Warn(ctx, "cache invalidation failed", "motif_id", id, "error", err.Error())
	}
	if err := s.cache.InvalidatePattern(ctx, cacheKeyListPattern); err != nil {
		metrics.CacheErrors.WithLabelValues("invalidate_pattern").Inc()
		logger.Warn(ctx, "list cache invalidation failed", "error", err.Error())
	}
}
