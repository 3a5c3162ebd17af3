package conflict

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpg-motif-api/internal/application/spatial"
	"rpg-motif-api/internal/domain/entity"
	"rpg-motif-api/internal/domain/repository"
)

type fakeMotifRepo struct {
	motifs map[string]*entity.Motif
}

func newFakeMotifRepo(motifs ...*entity.Motif) *fakeMotifRepo {
	f := &fakeMotifRepo{motifs: map[string]*entity.Motif{}}
	for _, m := range motifs {
		f.motifs[m.ID] = m
	}
	return f
}

func (f *fakeMotifRepo) Create(ctx context.Context, m *entity.Motif) error {
	f.motifs[m.ID] = m
	return nil
}

func (f *fakeMotifRepo) GetByID(ctx context.Context, id string) (*entity.Motif, error) {
	return f.motifs[id], nil
}

func (f *fakeMotifRepo) Update(ctx context.Context, m *entity.Motif) error {
	f.motifs[m.ID] = m
	return nil
}

func (f *fakeMotifRepo) Delete(ctx context.Context, id string) (bool, error) {
	_, ok := f.motifs[id]
	delete(f.motifs, id)
	return ok, nil
}

func (f *fakeMotifRepo) List(ctx context.Context, filter *repository.MotifFilter) ([]*entity.Motif, int64, error) {
	var out []*entity.Motif
	for _, m := range f.motifs {
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

func (f *fakeMotifRepo) ListActive(ctx context.Context) ([]*entity.Motif, error) {
	var out []*entity.Motif
	for _, m := range f.motifs {
		if m.IsActive() {
			out = append(out, m)
		}
	}
	spatial.SortByInfluence(out)
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

type fakeConflictRepo struct {
	byID map[string]*entity.MotifConflict
}

func newFakeConflictRepo() *fakeConflictRepo {
	return &fakeConflictRepo{byID: map[string]*entity.MotifConflict{}}
}

func (f *fakeConflictRepo) Create(ctx context.Context, c *entity.MotifConflict) error {
	f.byID[c.ID] = c
	return nil
}

func (f *fakeConflictRepo) Update(ctx context.Context, c *entity.MotifConflict) error {
	f.byID[c.ID] = c
	return nil
}

func (f *fakeConflictRepo) GetActiveByPairKey(ctx context.Context, pairKey string) (*entity.MotifConflict, error) {
	for _, c := range f.byID {
		if c.PairKey == pairKey && c.Status == entity.ConflictActive {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeConflictRepo) ListByStatus(ctx context.Context, status entity.ConflictStatus) ([]*entity.MotifConflict, error) {
	var out []*entity.MotifConflict
	for _, c := range f.byID {
		if c.Status == status {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeConflictRepo) DeleteForMotif(ctx context.Context, motifID string) error {
	for id, c := range f.byID {
		if c.MotifAID == motifID || c.MotifBID == motifID {
			delete(f.byID, id)
		}
	}
	return nil
}

func newDetector(motifs *fakeMotifRepo, conflicts *fakeConflictRepo) *Detector {
	resolver := spatial.NewResolver(motifs, 100)
	return NewDetector(motifs, conflicts, resolver, 8.0)
}

func globalMotif(name string, category entity.MotifCategory, intensity float64) *entity.Motif {
	return entity.NewMotif(name, category, entity.ScopeGlobal, intensity)
}

func TestDetectOpposingThemes(t *testing.T) {
	hope := globalMotif("Rising Hope", entity.CategoryHope, 8)
	despair := globalMotif("Creeping Despair", entity.CategoryDespair, 7)

	motifs := newFakeMotifRepo(hope, despair)
	conflicts := newFakeConflictRepo()
	d := newDetector(motifs, conflicts)

	found, err := d.Detect(context.Background())
	require.NoError(t, err)
	require.Len(t, found, 1)

	c := found[0]
	assert.Equal(t, entity.ConflictOpposingThemes, c.Type)
	assert.Equal(t, entity.SeverityMedium, c.Severity)
	assert.Equal(t, 1.0, c.OverlapFraction)
	assert.Equal(t, entity.ConflictActive, c.Status)
}

func TestDetectBelowTensionThreshold(t *testing.T) {
	hope := globalMotif("Faint Hope", entity.CategoryHope, 3)
	despair := globalMotif("Mild Despair", entity.CategoryDespair, 4)

	d := newDetector(newFakeMotifRepo(hope, despair), newFakeConflictRepo())

	found, err := d.Detect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestDetectIntensityClash(t *testing.T) {
	power := globalMotif("Hunger for Power", entity.CategoryPower, 9)
	mystery := globalMotif("Deep Mystery", entity.CategoryMystery, 8)

	d := newDetector(newFakeMotifRepo(power, mystery), newFakeConflictRepo())

	found, err := d.Detect(context.Background())
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, entity.ConflictIntensityClash, found[0].Type)
	assert.Equal(t, entity.SeverityHigh, found[0].Severity)
}

func TestDetectSkipsNonOverlapping(t *testing.T) {
	north := entity.NewMotif("Northern War", entity.CategoryWar, entity.ScopeRegional, 9)
	north.Location = &entity.LocationInfo{RegionID: "north"}
	south := entity.NewMotif("Southern Peace", entity.CategoryPeace, entity.ScopeRegional, 9)
	south.Location = &entity.LocationInfo{RegionID: "south"}

	d := newDetector(newFakeMotifRepo(north, south), newFakeConflictRepo())

	found, err := d.Detect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestDetectDoesNotDuplicateActivePairs(t *testing.T) {
	hope := globalMotif("Rising Hope", entity.CategoryHope, 8)
	despair := globalMotif("Creeping Despair", entity.CategoryDespair, 7)

	motifs := newFakeMotifRepo(hope, despair)
	conflicts := newFakeConflictRepo()
	d := newDetector(motifs, conflicts)

	first, err := d.Detect(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	// 强度变化后重新检测：刷新同一条记录而不是新建
	hope.Intensity = 9
	second, err := d.Detect(context.Background())
	require.NoError(t, err)
	require.Len(t, second, 1)

	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Len(t, conflicts.byID, 1)
	assert.Equal(t, entity.SeverityHigh, second[0].Severity)
}

func TestResolveIgnore(t *testing.T) {
	hope := globalMotif("Rising Hope", entity.CategoryHope, 8)
	despair := globalMotif("Creeping Despair", entity.CategoryDespair, 7)

	motifs := newFakeMotifRepo(hope, despair)
	conflicts := newFakeConflictRepo()
	d := newDetector(motifs, conflicts)

	_, err := d.Detect(context.Background())
	require.NoError(t, err)

	result, err := d.Resolve(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Ignored)
	assert.Equal(t, 0, result.Resolved)

	active, err := d.ListActive(context.Background())
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestResolveAutoWeakensWeakerMotif(t *testing.T) {
	hope := globalMotif("Rising Hope", entity.CategoryHope, 9)
	despair := globalMotif("Creeping Despair", entity.CategoryDespair, 6)

	motifs := newFakeMotifRepo(hope, despair)
	conflicts := newFakeConflictRepo()
	d := newDetector(motifs, conflicts)

	_, err := d.Detect(context.Background())
	require.NoError(t, err)

	result, err := d.Resolve(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Resolved)

	// 较弱一方被削弱：reduction = max(1, 6 * 1.0 * 0.5) = 3
	assert.Equal(t, 3.0, motifs.motifs[despair.ID].Intensity)
	assert.Equal(t, 9.0, motifs.motifs[hope.ID].Intensity)

	for _, c := range conflicts.byID {
		assert.Equal(t, entity.ConflictResolved, c.Status)
		assert.NotNil(t, c.ResolvedAt)
	}
}
