package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpg-motif-api/internal/domain/entity"
	"rpg-motif-api/internal/domain/repository"
)

// fakeMotifRepo 调度器测试用的内存实现
type fakeMotifRepo struct {
	motifs    map[string]*entity.Motif
	updateErr map[string]error
	purged    int64
	cutoff    time.Time
}

func newFakeRepo(motifs ...*entity.Motif) *fakeMotifRepo {
	f := &fakeMotifRepo{motifs: map[string]*entity.Motif{}, updateErr: map[string]error{}}
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
	if err := f.updateErr[m.ID]; err != nil {
		return err
	}
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
	return out, nil
}

func (f *fakeMotifRepo) ListExpired(ctx context.Context, now time.Time) ([]*entity.Motif, error) {
	var out []*entity.Motif
	for _, m := range f.motifs {
		if m.IsExpired(now) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMotifRepo) FindByPlayerAndCategory(ctx context.Context, playerID string, category entity.MotifCategory) (*entity.Motif, error) {
	return nil, nil
}

func (f *fakeMotifRepo) DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return f.purged, nil
}

func (f *fakeMotifRepo) Stats(ctx context.Context) (*repository.MotifStats, error) {
	return &repository.MotifStats{}, nil
}

func timedMotif(name string, start, end time.Time) *entity.Motif {
	m := entity.NewMotif(name, entity.CategoryFear, entity.ScopeGlobal, 5)
	m.StartTime = &start
	m.EndTime = &end
	return m
}

func TestAdvanceByProgress(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(100 * time.Hour)

	tests := []struct {
		name string
		at   time.Time
		want entity.MotifLifecycle
	}{
		{"early stays emerging", start.Add(10 * time.Hour), entity.LifecycleEmerging},
		{"mid becomes stable", start.Add(50 * time.Hour), entity.LifecycleStable},
		{"late becomes waning", start.Add(80 * time.Hour), entity.LifecycleWaning},
		{"past end becomes dormant", end.Add(time.Hour), entity.LifecycleDormant},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := timedMotif("Subject", start, end)
			repo := newFakeRepo(m)
			s := NewScheduler(repo, 0).WithClock(func() time.Time { return tt.at })

			result, err := s.Advance(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, repo.motifs[m.ID].Lifecycle)
			if tt.want == entity.LifecycleEmerging {
				assert.Equal(t, 0, result.Advanced)
			} else {
				assert.Equal(t, 1, result.Advanced)
			}
		})
	}
}

func TestAdvanceIsIdempotent(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := timedMotif("Subject", start, start.Add(100*time.Hour))
	repo := newFakeRepo(m)
	s := NewScheduler(repo, 0).WithClock(func() time.Time { return start.Add(50 * time.Hour) })

	first, err := s.Advance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Advanced)

	second, err := s.Advance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Advanced)
	assert.Equal(t, entity.LifecycleStable, repo.motifs[m.ID].Lifecycle)
}

func TestAdvanceSkipsPerpetualMotifs(t *testing.T) {
	canonical := entity.NewMotif("The Wheel", entity.CategoryDestiny, entity.ScopeGlobal, 4)
	canonical.IsCanonical = true
	repo := newFakeRepo(canonical)
	s := NewScheduler(repo, 0)

	result, err := s.Advance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Advanced)
	assert.Equal(t, 1, result.Skipped)
}

func TestAdvanceContinuesAfterItemFailure(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	bad := timedMotif("Bad", start, start.Add(10*time.Hour))
	good := timedMotif("Good", start, start.Add(10*time.Hour))

	repo := newFakeRepo(bad, good)
	repo.updateErr[bad.ID] = assert.AnError
	s := NewScheduler(repo, 0).WithClock(func() time.Time { return start.Add(5 * time.Hour) })

	result, err := s.Advance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Advanced)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, bad.ID, result.Failures[0].MotifID)
}

func TestCleanupMarksExpiredDormant(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	expired := timedMotif("Expired", start, start.Add(time.Hour))
	alreadyDone := timedMotif("Done", start, start.Add(time.Hour))
	alreadyDone.Lifecycle = entity.LifecycleConcluded

	repo := newFakeRepo(expired, alreadyDone)
	repo.purged = 3
	s := NewScheduler(repo, 24*time.Hour).WithClock(func() time.Time { return start.Add(48 * time.Hour) })

	result, err := s.Cleanup(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Expired)
	assert.Equal(t, int64(3), result.Removed)
	assert.Equal(t, entity.LifecycleDormant, repo.motifs[expired.ID].Lifecycle)
	// 已终止的主题不再改写
	assert.Equal(t, entity.LifecycleConcluded, repo.motifs[alreadyDone.ID].Lifecycle)
	// 清除截止点 = now - retention
	assert.Equal(t, start.Add(24*time.Hour), repo.cutoff)
}
