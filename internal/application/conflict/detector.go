// Package conflict 提供主题间叙事张力的检测与化解
package conflict

import (
	"context"
	"fmt"
	"math"

	"go.opentelemetry.io/otel"

	"rpg-motif-api/internal/application/spatial"
	"rpg-motif-api/internal/domain/entity"
	"rpg-motif-api/internal/domain/repository"
	"rpg-motif-api/internal/domain/service"
	"rpg-motif-api/pkg/logger"
	"rpg-motif-api/pkg/metrics"
)

var tracer = otel.Tracer("conflict")

// intensityClashThreshold 非对立类别触发强度冲突的合并强度下限
const intensityClashThreshold = 16.0

// ResolveResult 冲突化解结果
type ResolveResult struct {
	Resolved int      `json:"resolved"`
	Ignored  int      `json:"ignored"`
	Failures []string `json:"failures,omitempty"`
}

// Detector 冲突检测器。
// 冲突是叙事特性而非故障：检测结果是数据，永远不作为错误抛出。
type Detector struct {
	motifs           repository.MotifRepository
	conflicts        repository.ConflictRepository
	resolver         *spatial.Resolver
	tensionThreshold float64
}

// NewDetector 创建冲突检测器
func NewDetector(
	motifs repository.MotifRepository,
	conflicts repository.ConflictRepository,
	resolver *spatial.Resolver,
	tensionThreshold float64,
) *Detector {
	if tensionThreshold <= 0 {
		tensionThreshold = 8.0
	}
	return &Detector{
		motifs:           motifs,
		conflicts:        conflicts,
		resolver:         resolver,
		tensionThreshold: tensionThreshold,
	}
}

// Detect 扫描活跃主题对，更新或创建冲突记录。
// 同一无序对至多一条活跃记录：再次检测刷新既有记录，不产生重复。
func (d *Detector) Detect(ctx context.Context) ([]*entity.MotifConflict, error) {
	ctx, span := tracer.Start(ctx, "conflict.Detector.Detect")
	defer span.End()

	active, err := d.motifs.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	var found []*entity.MotifConflict
	for i := 0; i < len(active); i++ {
		for j := i + 1; j < len(active); j++ {
			a, b := active[i], active[j]

			ctype, ok := d.classify(a, b)
			if !ok {
				continue
			}

			overlap, overlapping := d.resolver.InfluenceOverlap(a, b)
			if !overlapping {
				continue
			}

			record, err := d.upsert(ctx, a, b, ctype, overlap)
			if err != nil {
				// 单对失败不中断整个扫描
				logger.Warn(ctx, "conflict upsert failed",
					"motif_a", a.ID, "motif_b", b.ID, "error", err.Error())
				continue
			}
			found = append(found, record)
		}
	}

	logger.Info(ctx, "conflict detection completed", "active_conflicts", len(found))
	return found, nil
}

// classify 判定两个主题之间的冲突类型
func (d *Detector) classify(a, b *entity.Motif) (entity.ConflictType, bool) {
	combined := a.Intensity + b.Intensity
	if service.AreOpposing(a.Category, b.Category) {
		if combined < d.tensionThreshold {
			return "", false
		}
		return entity.ConflictOpposingThemes, true
	}
	// 非对立类别只有在双方都足够强时才构成张力
	if combined >= intensityClashThreshold {
		return entity.ConflictIntensityClash, true
	}
	return "", false
}

// upsert 刷新既有活跃记录，否则创建新记录
func (d *Detector) upsert(ctx context.Context, a, b *entity.Motif, ctype entity.ConflictType, overlap float64) (*entity.MotifConflict, error) {
	pairKey := entity.ConflictPairKey(a.ID, b.ID)

	existing, err := d.conflicts.GetActiveByPairKey(ctx, pairKey)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		existing.Type = ctype
		existing.Refresh(a.Intensity+b.Intensity, overlap)
		if err := d.conflicts.Update(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	record := entity.NewMotifConflict(a, b, ctype, overlap)
	record.Description = fmt.Sprintf("%s clashes with %s", a.Name, b.Name)
	if err := d.conflicts.Create(ctx, record); err != nil {
		return nil, err
	}
	metrics.ConflictsDetectedTotal.WithLabelValues(string(record.Severity)).Inc()
	return record, nil
}

// ListActive 列出当前活跃冲突
func (d *Detector) ListActive(ctx context.Context) ([]*entity.MotifConflict, error) {
	return d.conflicts.ListByStatus(ctx, entity.ConflictActive)
}

// Resolve 化解全部活跃冲突。
// auto 为真时按重叠比例削弱较弱一方的强度并标记 resolved；
// 否则仅标记 ignored，冲突保留为调用方可见的叙事张力。
func (d *Detector) Resolve(ctx context.Context, auto bool) (*ResolveResult, error) {
	ctx, span := tracer.Start(ctx, "conflict.Detector.Resolve")
	defer span.End()

	activeConflicts, err := d.conflicts.ListByStatus(ctx, entity.ConflictActive)
	if err != nil {
		return nil, err
	}

	result := &ResolveResult{}
	for _, c := range activeConflicts {
		if !auto {
			c.Ignore()
			if err := d.conflicts.Update(ctx, c); err != nil {
				result.Failures = append(result.Failures, err.Error())
				continue
			}
			metrics.ConflictsResolvedTotal.WithLabelValues("ignored").Inc()
			result.Ignored++
			continue
		}

		if err := d.autoResolve(ctx, c); err != nil {
			result.Failures = append(result.Failures, err.Error())
			continue
		}
		metrics.ConflictsResolvedTotal.WithLabelValues("auto").Inc()
		result.Resolved++
	}

	return result, nil
}

// autoResolve 削弱较弱主题并关闭冲突记录
func (d *Detector) autoResolve(ctx context.Context, c *entity.MotifConflict) error {
	a, err := d.motifs.GetByID(ctx, c.MotifAID)
	if err != nil {
		return err
	}
	b, err := d.motifs.GetByID(ctx, c.MotifBID)
	if err != nil {
		return err
	}

	// 任一主题已消失则直接关闭冲突
	if a != nil && b != nil {
		weaker := a
		if b.Intensity < a.Intensity {
			weaker = b
		}
		reduction := math.Max(1, weaker.Intensity*c.OverlapFraction*0.5)
		weaker.ApplyIntensityChange(-reduction)
		if err := d.motifs.Update(ctx, weaker); err != nil {
			return err
		}
	}

	c.Resolve()
	return d.conflicts.Update(ctx, c)
}
