package motif

import (
	"context"

	"rpg-motif-api/internal/domain/entity"
	"rpg-motif-api/internal/domain/repository"
	"rpg-motif-api/pkg/logger"
)

// canonicalSeed 常驻全局主题的种子定义。
// 常驻主题没有结束时间，不参与生命周期推进与清理。
type canonicalSeed struct {
	Name        string
	Category    entity.MotifCategory
	Intensity   float64
	Description string
}

var canonicalSeeds = []canonicalSeed{
	{
		Name:        "The Wheel of Destiny",
		Category:    entity.CategoryDestiny,
		Intensity:   4,
		Description: "An undercurrent of fate that colors every consequential choice in the world.",
	},
	{
		Name:        "The Long Shadow of Death",
		Category:    entity.CategoryDeath,
		Intensity:   3,
		Description: "Mortality presses quietly on every living thing, lending weight to loss and danger.",
	},
	{
		Name:        "The Ember of Hope",
		Category:    entity.CategoryHope,
		Intensity:   3,
		Description: "However dark the hour, a stubborn spark insists that things can still change.",
	},
	{
		Name:        "The Hunger for Power",
		Category:    entity.CategoryPower,
		Intensity:   4,
		Description: "Ambition moves beneath courts and guilds alike, bending alliances toward advantage.",
	},
	{
		Name:        "The Veil of Mystery",
		Category:    entity.CategoryMystery,
		Intensity:   3,
		Description: "The world keeps its oldest secrets close, rewarding the curious and the cautious alike.",
	},
	{
		Name:        "The Price of Sacrifice",
		Category:    entity.CategorySacrifice,
		Intensity:   3,
		Description: "Nothing of worth comes without cost; every gain asks something in return.",
	},
}

// SeedCanonical 确保常驻全局主题存在，幂等。
// 返回本次实际创建的数量。
func (s *Service) SeedCanonical(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "motif.Service.SeedCanonical")
	defer span.End()

	existing, _, err := s.motifs.List(ctx, &repository.MotifFilter{
		Scope: entity.ScopeGlobal,
		Limit: 500,
	})
	if err != nil {
		return 0, err
	}
	present := make(map[entity.MotifCategory]bool, len(existing))
	for _, m := range existing {
		if m.IsCanonical {
			present[m.Category] = true
		}
	}

	created := 0
	for _, seed := range canonicalSeeds {
		if present[seed.Category] {
			continue
		}
		m := entity.NewMotif(seed.Name, seed.Category, entity.ScopeGlobal, seed.Intensity)
		m.Description = seed.Description
		m.IsCanonical = true
		m.Lifecycle = entity.LifecycleStable
		s.fillDerived(m)
		if err := m.Validate(); err != nil {
			return created, err
		}
		if err := s.motifs.Create(ctx, m); err != nil {
			return created, err
		}
		created++
		logger.Info(ctx, "canonical motif seeded", "motif_id", m.ID, "category", m.Category)
	}

	if created > 0 && s.cache != nil {
		if err := s.cache.InvalidatePattern(ctx, cacheKeyListPattern); err != nil {
			logger.Warn(ctx, "list cache invalidation failed", "error", err.Error())
		}
	}
	return created, nil
}
