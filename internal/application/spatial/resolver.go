// Package spatial 提供主题的空间/作用域解析
package spatial

import (
	"context"
	"math"
	"sort"

	"go.opentelemetry.io/otel"

	"rpg-motif-api/internal/domain/entity"
	"rpg-motif-api/internal/domain/repository"
	"rpg-motif-api/pkg/errors"
)

var tracer = otel.Tracer("spatial")

// Point 带半径的查询点
type Point struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
}

// Query 空间查询：全局、区域、坐标点或玩家，四者取其一
type Query struct {
	Global   bool    `json:"global,omitempty"`
	RegionID string  `json:"region_id,omitempty"`
	Point    *Point  `json:"point,omitempty"`
	PlayerID string  `json:"player_id,omitempty"`
}

// Validate 校验查询形态
func (q *Query) Validate() error {
	if !q.Global && q.RegionID == "" && q.Point == nil && q.PlayerID == "" {
		return errors.NewInvalidQuery("query must specify a point, a region, a player, or global")
	}
	return nil
}

// Resolver 空间/作用域解析器
type Resolver struct {
	motifs             repository.MotifRepository
	defaultLocalRadius float64
}

// NewResolver 创建解析器
func NewResolver(motifs repository.MotifRepository, defaultLocalRadius float64) *Resolver {
	if defaultLocalRadius <= 0 {
		defaultLocalRadius = 100.0
	}
	return &Resolver{
		motifs:             motifs,
		defaultLocalRadius: defaultLocalRadius,
	}
}

// MotifsAt 返回影响范围覆盖查询目标的主题，按强度降序、创建时间升序排序
func (r *Resolver) MotifsAt(ctx context.Context, q *Query) ([]*entity.Motif, error) {
	ctx, span := tracer.Start(ctx, "spatial.Resolver.MotifsAt")
	defer span.End()

	if err := q.Validate(); err != nil {
		return nil, err
	}

	candidates, err := r.motifs.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]*entity.Motif, 0, len(candidates))
	for _, m := range candidates {
		if r.matches(m, q) {
			matched = append(matched, m)
		}
	}

	SortByInfluence(matched)
	return matched, nil
}

// matches 单个主题是否覆盖查询目标
func (r *Resolver) matches(m *entity.Motif, q *Query) bool {
	switch m.Scope {
	case entity.ScopeGlobal:
		// 全局主题覆盖一切查询，DORMANT 除外（活跃集合已排除终止态）
		return true

	case entity.ScopeRegional:
		if m.Location == nil {
			return false
		}
		return q.RegionID != "" && q.RegionID == m.Location.RegionID

	case entity.ScopeLocal:
		if m.Location == nil || q.Point == nil {
			return false
		}
		radius := m.Location.Radius
		if radius <= 0 {
			radius = r.defaultLocalRadius
		}
		dist := distance(q.Point.X, q.Point.Y, m.Location.X, m.Location.Y)
		return dist <= radius+q.Point.Radius

	case entity.ScopePlayerCharacter:
		// 玩家主题只对显式指向该玩家的查询可见
		return q.PlayerID != "" && q.PlayerID == m.PlayerID
	}
	return false
}

// SortByInfluence 强度降序，同强度按创建时间升序，保证确定性输出
func SortByInfluence(motifs []*entity.Motif) {
	sort.SliceStable(motifs, func(i, j int) bool {
		if motifs[i].Intensity != motifs[j].Intensity {
			return motifs[i].Intensity > motifs[j].Intensity
		}
		return motifs[i].CreatedAt.Before(motifs[j].CreatedAt)
	})
}

// InfluenceOverlap 两个主题影响范围的重叠比例。
// 采用线性近似而非精确圆交面积，下游只需要粗粒度的重叠程度。
func (r *Resolver) InfluenceOverlap(a, b *entity.Motif) (float64, bool) {
	// 全局主题与任何主题重叠
	if a.Scope == entity.ScopeGlobal || b.Scope == entity.ScopeGlobal {
		return 1.0, true
	}

	// 同玩家的玩家主题互相重叠
	if a.Scope == entity.ScopePlayerCharacter || b.Scope == entity.ScopePlayerCharacter {
		if a.PlayerID != "" && a.PlayerID == b.PlayerID {
			return 1.0, true
		}
		return 0, false
	}

	if a.Location == nil || b.Location == nil {
		return 0, false
	}

	// 同区域即完全重叠
	if a.Location.RegionID != "" && a.Location.RegionID == b.Location.RegionID {
		return 1.0, true
	}
	if a.Scope == entity.ScopeRegional || b.Scope == entity.ScopeRegional {
		return 0, false
	}

	// LOCAL 对 LOCAL：接触阈值取两者半径与缺省半径的最大值
	threshold := math.Max(a.Location.Radius, b.Location.Radius)
	threshold = math.Max(threshold, r.defaultLocalRadius)
	dist := distance(a.Location.X, a.Location.Y, b.Location.X, b.Location.Y)
	if dist > threshold {
		return 0, false
	}
	return 1.0 - dist/threshold, true
}

// distance 欧氏距离
func distance(x1, y1, x2, y2 float64) float64 {
	dx := x1 - x2
	dy := y1 - y2
	return math.Sqrt(dx*dx + dy*dy)
}
