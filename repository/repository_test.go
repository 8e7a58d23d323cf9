package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/natansdj/electives/drivers"
	"github.com/natansdj/electives/pool"
	"github.com/natansdj/electives/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	provider, err := drivers.SqLite(context.Background(), &types.SqLite{
		Path: filepath.Join(t.TempDir(), "repository.db"),
		Pool: types.Pool{Size: 2, KeepAliveInterval: time.Hour},
	})
	require.NoError(t, err)
	t.Cleanup(func() { provider.Disconnect(context.Background()) })

	require.NoError(t, provider.Gorm.AutoMigrate(&Module{}, &Review{}))
	require.NoError(t, provider.Gorm.Create([]Module{
		{ModuleCode: "CS2030", ModuleName: "Programming Methodology II", Description: "Java and FP"},
		{ModuleCode: "CS3230", ModuleName: "Design and Analysis of Algorithms"},
		{ModuleCode: "GEA1000", ModuleName: "Quantitative Reasoning with Data"},
	}).Error)

	return New(provider.Gorm, provider.Pool)
}

func TestAllModules(t *testing.T) {
	repo := newTestRepository(t)

	modules, err := repo.AllModules(context.Background())
	require.NoError(t, err)
	assert.Len(t, modules, 3)
	assert.Equal(t, 0, repo.Pool.Stats().InUse)
}

func TestSearchModules(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	byCode, err := repo.SearchModules(ctx, "CS")
	require.NoError(t, err)
	assert.Len(t, byCode, 2)

	byName, err := repo.SearchModules(ctx, "Algorithms")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "CS3230", byName[0].ModuleCode)

	none, err := repo.SearchModules(ctx, "zzz")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestModuleByCode(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	m, err := repo.ModuleByCode(ctx, "CS2030")
	require.NoError(t, err)
	assert.Equal(t, "Programming Methodology II", m.ModuleName)
	assert.Equal(t, "Java and FP", m.Description)

	_, err = repo.ModuleByCode(ctx, "XX0000")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrQueryFailure)
	assert.Equal(t, 1, repo.Pool.Stats().IdleConnections, "not found keeps the connection")
}

func TestSubmitAndListReviews(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	review := &Review{ElectiveCode: "CS3230", Rating: 4, Review: "Tough but fair"}
	require.NoError(t, repo.SubmitReview(ctx, review))
	assert.NotZero(t, review.ID)
	assert.False(t, review.CreatedAt.IsZero())

	require.NoError(t, repo.SubmitReview(ctx, &Review{ElectiveCode: "CS2030", Rating: 5, Review: "Great"}))

	reviews, err := repo.ModuleReviews(ctx, "CS3230")
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "Tough but fair", reviews[0].Review)
	assert.Equal(t, 4, reviews[0].Rating)

	empty, err := repo.ModuleReviews(ctx, "GEA1000")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestQueryFailureIsWrapped(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.DB.Migrator().DropTable(&Review{}))

	_, err := repo.ModuleReviews(ctx, "CS3230")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQueryFailure)
	assert.Equal(t, 0, repo.Pool.Stats().InUse)
}

func TestPoolErrorsPassThrough(t *testing.T) {
	repo := newTestRepository(t)

	require.NoError(t, repo.Pool.Shutdown(context.Background()))

	_, err := repo.AllModules(context.Background())
	assert.ErrorIs(t, err, pool.ErrShutdownInProgress)
	assert.NotErrorIs(t, err, ErrQueryFailure)
}
