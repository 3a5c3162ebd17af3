package motif

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpg-motif-api/internal/application/evolution"
	"rpg-motif-api/internal/config"
	"rpg-motif-api/internal/domain/entity"
	"rpg-motif-api/internal/domain/repository"
	"rpg-motif-api/pkg/errors"
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
	if _, ok := f.motifs[m.ID]; !ok {
		return errors.NewNotFound("motif", m.ID)
	}
	m.Version++
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
		if filter.Scope != "" && m.Scope != filter.Scope {
			continue
		}
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
	return out, nil
}

func (f *fakeMotifRepo) ListExpired(ctx context.Context, now time.Time) ([]*entity.Motif, error) {
	return nil, nil
}

func (f *fakeMotifRepo) FindByPlayerAndCategory(ctx context.Context, playerID string, category entity.MotifCategory) (*entity.Motif, error) {
	for _, m := range f.motifs {
		if m.PlayerID == playerID && m.Category == category && m.Scope == entity.ScopePlayerCharacter && m.IsActive() {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeMotifRepo) DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeMotifRepo) Stats(ctx context.Context) (*repository.MotifStats, error) {
	stats := &repository.MotifStats{
		ByCategory:  map[entity.MotifCategory]int64{},
		ByScope:     map[entity.MotifScope]int64{},
		ByLifecycle: map[entity.MotifLifecycle]int64{},
	}
	for _, m := range f.motifs {
		stats.Total++
		if m.IsActive() {
			stats.Active++
		}
		if m.IsCanonical {
			stats.Canonical++
		}
		stats.ByCategory[m.Category]++
		stats.ByScope[m.Scope]++
		stats.ByLifecycle[m.Lifecycle]++
	}
	return stats, nil
}

type fakeConflictRepo struct {
	deletedFor []string
}

func (f *fakeConflictRepo) Create(ctx context.Context, c *entity.MotifConflict) error { return nil }
func (f *fakeConflictRepo) Update(ctx context.Context, c *entity.MotifConflict) error { return nil }
func (f *fakeConflictRepo) GetActiveByPairKey(ctx context.Context, pairKey string) (*entity.MotifConflict, error) {
	return nil, nil
}
func (f *fakeConflictRepo) ListByStatus(ctx context.Context, status entity.ConflictStatus) ([]*entity.MotifConflict, error) {
	return nil, nil
}
func (f *fakeConflictRepo) DeleteForMotif(ctx context.Context, motifID string) error {
	f.deletedFor = append(f.deletedFor, motifID)
	return nil
}

type fakeTx struct{}

func (fakeTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Motif.MaxListLimit = 100
	cfg.Cache.TTL.Motif = 5 * time.Minute
	return cfg
}

func newService(repo *fakeMotifRepo, conflicts *fakeConflictRepo) *Service {
	return NewService(repo, conflicts, fakeTx{}, evolution.NewEngine(repo), nil, nil, testConfig())
}

func TestCreateFillsDerivedFields(t *testing.T) {
	repo := newFakeMotifRepo()
	svc := newService(repo, &fakeConflictRepo{})

	m := entity.NewMotif("", entity.CategoryFear, entity.ScopeGlobal, 6)
	m.Name = ""

	result, err := svc.Create(context.Background(), m)
	require.NoError(t, err)
	require.False(t, result.Reinforced)

	created := result.Motif
	assert.NotEmpty(t, created.Name)
	assert.NotEmpty(t, created.Description)
	assert.Equal(t, "fear", created.Theme)
	assert.Equal(t, "dark", created.Tone)
	assert.NotEmpty(t, created.NarrativeDirection)
	assert.NotEmpty(t, created.Descriptors)
	require.NotNil(t, created.StartTime)
	require.NotNil(t, created.EndTime)
	assert.True(t, created.EndTime.After(*created.StartTime))
	assert.Contains(t, repo.motifs, created.ID)
}

func TestCreateCanonicalHasNoEndTime(t *testing.T) {
	svc := newService(newFakeMotifRepo(), &fakeConflictRepo{})

	m := entity.NewMotif("The Wheel of Destiny", entity.CategoryDestiny, entity.ScopeGlobal, 4)
	m.IsCanonical = true
	m.Lifecycle = entity.LifecycleStable

	result, err := svc.Create(context.Background(), m)
	require.NoError(t, err)
	assert.Nil(t, result.Motif.StartTime)
	assert.Nil(t, result.Motif.EndTime)
}

func TestCreateRejectsInvalidMotif(t *testing.T) {
	svc := newService(newFakeMotifRepo(), &fakeConflictRepo{})

	m := entity.NewMotif("Bad", entity.CategoryFear, entity.ScopeGlobal, 15)
	_, err := svc.Create(context.Background(), m)
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidationFailed, errors.AsAppError(err).Code)

	// 零强度走实体校验，错误需点名 intensity 字段
	zero := entity.NewMotif("Flat", entity.CategoryFear, entity.ScopeGlobal, 0)
	_, err = svc.Create(context.Background(), zero)
	require.Error(t, err)
	appErr := errors.AsAppError(err)
	assert.Equal(t, errors.CodeValidationFailed, appErr.Code)
	assert.Contains(t, appErr.Fields, "intensity")
}

func TestCreateReinforcesExistingPlayerMotif(t *testing.T) {
	existing := entity.NewMotif("Private Guilt", entity.CategoryGuilt, entity.ScopePlayerCharacter, 4)
	existing.PlayerID = "player-1"
	existing.Location = &entity.LocationInfo{FollowsPlayer: true}

	repo := newFakeMotifRepo(existing)
	svc := newService(repo, &fakeConflictRepo{})

	dup := entity.NewMotif("Another Guilt", entity.CategoryGuilt, entity.ScopePlayerCharacter, 6)
	dup.PlayerID = "player-1"
	dup.Location = &entity.LocationInfo{FollowsPlayer: true}

	result, err := svc.Create(context.Background(), dup)
	require.NoError(t, err)

	assert.True(t, result.Reinforced)
	assert.Equal(t, existing.ID, result.Motif.ID)
	// 强化量为新主题强度的一半
	assert.Equal(t, 7.0, result.Motif.Intensity)
	// 不产生重复主题
	assert.Len(t, repo.motifs, 1)
}

func TestGetWithoutCache(t *testing.T) {
	m := entity.NewMotif("Subject", entity.CategoryFear, entity.ScopeGlobal, 5)
	svc := newService(newFakeMotifRepo(m), &fakeConflictRepo{})

	got, err := svc.Get(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)

	_, err = svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestUpdatePartialPatch(t *testing.T) {
	m := entity.NewMotif("Subject", entity.CategoryFear, entity.ScopeGlobal, 5)
	svc := newService(newFakeMotifRepo(m), &fakeConflictRepo{})

	newIntensity := 8.0
	got, err := svc.Update(context.Background(), m.ID, &UpdateInput{Intensity: &newIntensity})
	require.NoError(t, err)

	assert.Equal(t, 8.0, got.Intensity)
	assert.Equal(t, "Subject", got.Name)
}

func TestUpdateRejectsLifecycleRegression(t *testing.T) {
	m := entity.NewMotif("Subject", entity.CategoryFear, entity.ScopeGlobal, 5)
	m.Lifecycle = entity.LifecycleWaning
	svc := newService(newFakeMotifRepo(m), &fakeConflictRepo{})

	back := entity.LifecycleStable
	_, err := svc.Update(context.Background(), m.ID, &UpdateInput{Lifecycle: &back})
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidationFailed, errors.AsAppError(err).Code)

	// 前向变更与 CONCLUDED 收尾都允许
	done := entity.LifecycleConcluded
	got, err := svc.Update(context.Background(), m.ID, &UpdateInput{Lifecycle: &done})
	require.NoError(t, err)
	assert.Equal(t, entity.LifecycleConcluded, got.Lifecycle)
}

func TestDeleteRemovesConflicts(t *testing.T) {
	m := entity.NewMotif("Subject", entity.CategoryFear, entity.ScopeGlobal, 5)
	conflicts := &fakeConflictRepo{}
	svc := newService(newFakeMotifRepo(m), conflicts)

	deleted, err := svc.Delete(context.Background(), m.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, []string{m.ID}, conflicts.deletedFor)

	deleted, err = svc.Delete(context.Background(), m.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestListValidatesFilter(t *testing.T) {
	svc := newService(newFakeMotifRepo(), &fakeConflictRepo{})

	_, _, err := svc.List(context.Background(), &repository.MotifFilter{Category: "NOT_A_CATEGORY"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidQuery, errors.AsAppError(err).Code)

	minI, maxI := 8.0, 3.0
	_, _, err = svc.List(context.Background(), &repository.MotifFilter{MinIntensity: &minI, MaxIntensity: &maxI})
	require.Error(t, err)
}

func TestListCapsLimit(t *testing.T) {
	repo := newFakeMotifRepo()
	svc := newService(repo, &fakeConflictRepo{})

	filter := &repository.MotifFilter{Limit: 10000}
	_, _, err := svc.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, 100, filter.Limit)
}

func TestApplyEffectsRejectsUnknownTarget(t *testing.T) {
	m := entity.NewMotif("Subject", entity.CategoryFear, entity.ScopeGlobal, 5)
	svc := newService(newFakeMotifRepo(m), &fakeConflictRepo{})

	_, err := svc.ApplyEffects(context.Background(), m.ID, []entity.EffectTarget{"WEATHER"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidQuery, errors.AsAppError(err).Code)
}

func TestApplyEffectsComputesResults(t *testing.T) {
	m := entity.NewMotif("Subject", entity.CategoryFear, entity.ScopeGlobal, 5)
	m.Lifecycle = entity.LifecycleStable
	m.Effects = []entity.MotifEffect{{Target: entity.TargetNPC, Intensity: 5}}
	svc := newService(newFakeMotifRepo(m), &fakeConflictRepo{})

	results, err := svc.ApplyEffects(context.Background(), m.ID, []entity.EffectTarget{entity.TargetNPC})
	require.NoError(t, err)
	require.Len(t, results[entity.TargetNPC], 1)
	assert.True(t, results[entity.TargetNPC][0].Applied)
}

func TestSeedCanonicalIsIdempotent(t *testing.T) {
	repo := newFakeMotifRepo()
	svc := newService(repo, &fakeConflictRepo{})

	created, err := svc.SeedCanonical(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(canonicalSeeds), created)

	for _, m := range repo.motifs {
		assert.True(t, m.IsCanonical)
		assert.Equal(t, entity.ScopeGlobal, m.Scope)
		assert.Nil(t, m.EndTime)
	}

	again, err := svc.SeedCanonical(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, again)
	assert.Len(t, repo.motifs, len(canonicalSeeds))
}

func TestStats(t *testing.T) {
	a := entity.NewMotif("A", entity.CategoryFear, entity.ScopeGlobal, 5)
	b := entity.NewMotif("B", entity.CategoryHope, entity.ScopeGlobal, 5)
	b.Lifecycle = entity.LifecycleConcluded

	svc := newService(newFakeMotifRepo(a, b), &fakeConflictRepo{})

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(1), stats.Active)
	assert.Equal(t, int64(1), stats.ByCategory[entity.CategoryFear])
}
