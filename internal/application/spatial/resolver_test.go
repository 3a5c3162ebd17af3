package spatial

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpg-motif-api/internal/domain/entity"
	"rpg-motif-api/internal/domain/repository"
	"rpg-motif-api/pkg/errors"
)

// fakeMotifRepo 仅支撑解析器所需的内存实现
type fakeMotifRepo struct {
	motifs []*entity.Motif
}

func (f *fakeMotifRepo) Create(ctx context.Context, m *entity.Motif) error {
	f.motifs = append(f.motifs, m)
	return nil
}

func (f *fakeMotifRepo) GetByID(ctx context.Context, id string) (*entity.Motif, error) {
	for _, m := range f.motifs {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeMotifRepo) Update(ctx context.Context, m *entity.Motif) error { return nil }

func (f *fakeMotifRepo) Delete(ctx context.Context, id string) (bool, error) { return false, nil }

func (f *fakeMotifRepo) List(ctx context.Context, filter *repository.MotifFilter) ([]*entity.Motif, int64, error) {
	return f.motifs, int64(len(f.motifs)), nil
}

func (f *fakeMotifRepo) ListActive(ctx context.Context) ([]*entity.Motif, error) {
	var out []*entity.Motif
	for _, m := range f.motifs {
		if m.IsActive() {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMotifRepo) ListExpired(ctx context.Context, now time.Time) ([]*entity.Motif, error) {
	return nil, nil
}

func (f *fakeMotifRepo) FindByPlayerAndCategory(ctx context.Context, playerID string, category entity.MotifCategory) (*entity.Motif, error) {
	return nil, nil
}

func (f *fakeMotifRepo) DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeMotifRepo) Stats(ctx context.Context) (*repository.MotifStats, error) {
	return &repository.MotifStats{}, nil
}

func localMotif(name string, x, y, radius float64, intensity float64) *entity.Motif {
	m := entity.NewMotif(name, entity.CategoryFear, entity.ScopeLocal, intensity)
	m.Location = &entity.LocationInfo{X: x, Y: y, Radius: radius}
	return m
}

func TestMotifsAtPoint(t *testing.T) {
	near := localMotif("Near Dread", 0, 0, 10, 5)
	far := localMotif("Far Dread", 100, 100, 10, 5)
	global := entity.NewMotif("World Fear", entity.CategoryFear, entity.ScopeGlobal, 3)

	repo := &fakeMotifRepo{motifs: []*entity.Motif{near, far, global}}
	r := NewResolver(repo, 100)

	// 距离 sqrt(5^2+5^2) ≈ 7.07 在半径 10 内
	got, err := r.MotifsAt(context.Background(), &Query{Point: &Point{X: 5, Y: 5}})
	require.NoError(t, err)
	require.Len(t, got, 2)

	names := []string{got[0].Name, got[1].Name}
	assert.Contains(t, names, "Near Dread")
	assert.Contains(t, names, "World Fear")
}

func TestMotifsAtOrdering(t *testing.T) {
	older := entity.NewMotif("Older", entity.CategoryHope, entity.ScopeGlobal, 5)
	older.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := entity.NewMotif("Newer", entity.CategoryFear, entity.ScopeGlobal, 5)
	newer.CreatedAt = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	strongest := entity.NewMotif("Strongest", entity.CategoryWar, entity.ScopeGlobal, 9)

	repo := &fakeMotifRepo{motifs: []*entity.Motif{newer, strongest, older}}
	r := NewResolver(repo, 100)

	got, err := r.MotifsAt(context.Background(), &Query{Global: true})
	require.NoError(t, err)
	require.Len(t, got, 3)

	// 强度降序，同强度按创建时间升序
	assert.Equal(t, "Strongest", got[0].Name)
	assert.Equal(t, "Older", got[1].Name)
	assert.Equal(t, "Newer", got[2].Name)
}

func TestMotifsAtRegionAndPlayer(t *testing.T) {
	regional := entity.NewMotif("Border War", entity.CategoryWar, entity.ScopeRegional, 6)
	regional.Location = &entity.LocationInfo{RegionID: "north"}

	personal := entity.NewMotif("Private Guilt", entity.CategoryGuilt, entity.ScopePlayerCharacter, 4)
	personal.PlayerID = "player-1"
	personal.Location = &entity.LocationInfo{FollowsPlayer: true}

	repo := &fakeMotifRepo{motifs: []*entity.Motif{regional, personal}}
	r := NewResolver(repo, 100)

	got, err := r.MotifsAt(context.Background(), &Query{RegionID: "north"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Border War", got[0].Name)

	// 区域查询不暴露他人的玩家主题
	got, err = r.MotifsAt(context.Background(), &Query{RegionID: "south"})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = r.MotifsAt(context.Background(), &Query{PlayerID: "player-1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Private Guilt", got[0].Name)
}

func TestMotifsAtRejectsEmptyQuery(t *testing.T) {
	r := NewResolver(&fakeMotifRepo{}, 100)
	_, err := r.MotifsAt(context.Background(), &Query{})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidQuery, errors.AsAppError(err).Code)
}

func TestLocalDefaultRadius(t *testing.T) {
	m := localMotif("Unsized", 0, 0, 0, 5)
	repo := &fakeMotifRepo{motifs: []*entity.Motif{m}}
	r := NewResolver(repo, 50)

	got, err := r.MotifsAt(context.Background(), &Query{Point: &Point{X: 40, Y: 0}})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = r.MotifsAt(context.Background(), &Query{Point: &Point{X: 60, Y: 0}})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestInfluenceOverlap(t *testing.T) {
	r := NewResolver(&fakeMotifRepo{}, 100)

	global := entity.NewMotif("World", entity.CategoryHope, entity.ScopeGlobal, 5)
	local := localMotif("Spot", 0, 0, 100, 5)

	overlap, ok := r.InfluenceOverlap(global, local)
	assert.True(t, ok)
	assert.Equal(t, 1.0, overlap)

	// 同点的 LOCAL 主题完全重叠
	other := localMotif("Same Spot", 0, 0, 100, 5)
	overlap, ok = r.InfluenceOverlap(local, other)
	assert.True(t, ok)
	assert.Equal(t, 1.0, overlap)

	// 超出接触阈值不重叠
	distant := localMotif("Distant", 500, 0, 100, 5)
	_, ok = r.InfluenceOverlap(local, distant)
	assert.False(t, ok)

	// 部分重叠按距离线性衰减
	half := localMotif("Halfway", 50, 0, 100, 5)
	overlap, ok = r.InfluenceOverlap(local, half)
	assert.True(t, ok)
	assert.InDelta(t, 0.5, overlap, 1e-9)
}

func TestInfluenceOverlapPlayerScopes(t *testing.T) {
	r := NewResolver(&fakeMotifRepo{}, 100)

	a := entity.NewMotif("A", entity.CategoryGuilt, entity.ScopePlayerCharacter, 5)
	a.PlayerID = "p1"
	b := entity.NewMotif("B", entity.CategoryRedemption, entity.ScopePlayerCharacter, 5)
	b.PlayerID = "p1"
	c := entity.NewMotif("C", entity.CategoryGuilt, entity.ScopePlayerCharacter, 5)
	c.PlayerID = "p2"

	overlap, ok := r.InfluenceOverlap(a, b)
	assert.True(t, ok)
	assert.Equal(t, 1.0, overlap)

	_, ok = r.InfluenceOverlap(a, c)
	assert.False(t, ok)
}

func TestInfluenceOverlapRegions(t *testing.T) {
	r := NewResolver(&fakeMotifRepo{}, 100)

	north := entity.NewMotif("North", entity.CategoryWar, entity.ScopeRegional, 5)
	north.Location = &entity.LocationInfo{RegionID: "north"}
	alsoNorth := entity.NewMotif("Also North", entity.CategoryPeace, entity.ScopeRegional, 5)
	alsoNorth.Location = &entity.LocationInfo{RegionID: "north"}
	south := entity.NewMotif("South", entity.CategoryPeace, entity.ScopeRegional, 5)
	south.Location = &entity.LocationInfo{RegionID: "south"}

	overlap, ok := r.InfluenceOverlap(north, alsoNorth)
	assert.True(t, ok)
	assert.Equal(t, 1.0, overlap)

	_, ok = r.InfluenceOverlap(north, south)
	assert.False(t, ok)
}
