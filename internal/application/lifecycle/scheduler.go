// Package lifecycle 提供主题生命周期的时间推进与清理
package lifecycle

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"

	"rpg-motif-api/internal/domain/entity"
	"rpg-motif-api/internal/domain/repository"
	"rpg-motif-api/pkg/logger"
	"rpg-motif-api/pkg/metrics"
)

var tracer = otel.Tracer("lifecycle")

// ItemFailure 扫描中单个主题的失败记录
type ItemFailure struct {
	MotifID string `json:"motif_id"`
	Error   string `json:"error"`
}

// SweepResult 生命周期推进结果
type SweepResult struct {
	Advanced int           `json:"advanced"`
	Skipped  int           `json:"skipped"`
	Failures []ItemFailure `json:"failures,omitempty"`
}

// CleanupResult 过期清理结果
type CleanupResult struct {
	Expired  int           `json:"expired"`
	Removed  int64         `json:"removed"`
	Failures []ItemFailure `json:"failures,omitempty"`
}

// Scheduler 生命周期调度器。
// 推进与清理都是由外部调用触发的显式扫描，进程内不自行定时。
type Scheduler struct {
	motifs    repository.MotifRepository
	retention time.Duration
	now       func() time.Time
}

// NewScheduler 创建调度器
func NewScheduler(motifs repository.MotifRepository, retention time.Duration) *Scheduler {
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	return &Scheduler{
		motifs:    motifs,
		retention: retention,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock 替换时钟，测试用
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

// Advance 扫描全部非终止态主题，按时间进度推进生命周期。
// 只写回状态实际变化的主题；单个主题失败不会中断扫描。
func (s *Scheduler) Advance(ctx context.Context) (*SweepResult, error) {
	ctx, span := tracer.Start(ctx, "lifecycle.Scheduler.Advance")
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.LifecycleSweepDuration.Observe(time.Since(start).Seconds())
	}()

	active, err := s.motifs.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	result := &SweepResult{}
	for _, m := range active {
		progress, ok := m.Progress(now)
		if !ok {
			// 常驻主题没有起止时间，跳过
			result.Skipped++
			continue
		}

		next := entity.LifecycleForProgress(progress)
		if next == m.Lifecycle || !m.Lifecycle.CanAdvanceTo(next) {
			continue
		}

		m.Lifecycle = next
		m.UpdatedAt = now
		if err := s.motifs.Update(ctx, m); err != nil {
			logger.Warn(ctx, "lifecycle advance failed for motif",
				"motif_id", m.ID, "error", err.Error())
			result.Failures = append(result.Failures, ItemFailure{MotifID: m.ID, Error: err.Error()})
			continue
		}

		metrics.LifecycleAdvancesTotal.WithLabelValues(string(next)).Inc()
		result.Advanced++
	}

	logger.Info(ctx, "lifecycle sweep completed",
		"advanced", result.Advanced,
		"skipped", result.Skipped,
		"failed", len(result.Failures),
	)
	return result, nil
}

// Cleanup 处理过期主题：先标记 DORMANT，再清除超出保留期的终止态主题
func (s *Scheduler) Cleanup(ctx context.Context) (*CleanupResult, error) {
	ctx, span := tracer.Start(ctx, "lifecycle.Scheduler.Cleanup")
	defer span.End()

	now := s.now()
	expired, err := s.motifs.ListExpired(ctx, now)
	if err != nil {
		return nil, err
	}

	result := &CleanupResult{}
	for _, m := range expired {
		result.Expired++
		if m.Lifecycle.IsTerminal() {
			continue
		}
		m.Lifecycle = entity.LifecycleDormant
		m.UpdatedAt = now
		if err := s.motifs.Update(ctx, m); err != nil {
			result.Failures = append(result.Failures, ItemFailure{MotifID: m.ID, Error: err.Error()})
		}
	}

	removed, err := s.motifs.DeleteTerminalBefore(ctx, now.Add(-s.retention))
	if err != nil {
		// 归档失败不影响已完成的标记
		logger.Warn(ctx, "failed to purge archived motifs", "error", err.Error())
	} else {
		result.Removed = removed
	}

	logger.Info(ctx, "motif cleanup completed",
		"expired", result.Expired,
		"removed", result.Removed,
		"failed", len(result.Failures),
	)
	return result, nil
}
