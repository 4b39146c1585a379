package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/trending/internal/model"
	"github.com/qs3c/trending/internal/testutil"
)

var summaryDay = model.Date{Year: 2026, Month: time.October, Day: 19}

func TestSummaryRepository_CreateAndGetByKey(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	now := time.Date(2026, 10, 19, 23, 0, 0, 0, time.UTC)
	repo := NewSummaryRepository(db).WithClock(testutil.FixedNow(now))
	ctx := context.Background()

	summary := &model.DailyViewSummary{
		ViewsOn:    summaryDay,
		Count:      5,
		EntityType: testutil.EntityTypeArticle,
		EntityID:   1,
		Kind:       "featured",
	}
	require.NoError(t, repo.Create(ctx, summary))
	assert.NotZero(t, summary.ID)

	found, err := repo.GetByKey(ctx, summaryDay, testutil.ArticleRef(1))
	require.NoError(t, err)
	assert.Equal(t, summary.ID, found.ID)
	assert.Equal(t, summaryDay, found.ViewsOn)
	assert.Equal(t, uint64(5), found.Count)
	assert.Equal(t, "featured", found.Kind)
	assert.True(t, found.CreatedAt.Equal(now))

	_, err = repo.GetByKey(ctx, summaryDay.AddDays(-1), testutil.ArticleRef(1))
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestSummaryRepository_UniqueIgnoresKind(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSummaryRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.DailyViewSummary{
		ViewsOn: summaryDay, Count: 1, EntityType: testutil.EntityTypeArticle, EntityID: 1,
	}))
	err := repo.Create(ctx, &model.DailyViewSummary{
		ViewsOn: summaryDay, Count: 1, EntityType: testutil.EntityTypeArticle, EntityID: 1, Kind: "featured",
	})
	assert.Error(t, err)
}

func TestSummaryRepository_UpdateCount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	created := time.Date(2026, 10, 19, 1, 0, 0, 0, time.UTC)
	updated := created.Add(3 * time.Hour)

	repo := NewSummaryRepository(db).WithClock(testutil.FixedNow(created))
	ctx := context.Background()

	summary := &model.DailyViewSummary{ViewsOn: summaryDay, Count: 1, EntityType: testutil.EntityTypeArticle, EntityID: 1}
	require.NoError(t, repo.Create(ctx, summary))

	repo.WithClock(testutil.FixedNow(updated))
	require.NoError(t, repo.UpdateCount(ctx, summary, 9))

	found, err := repo.GetByKey(ctx, summaryDay, testutil.ArticleRef(1))
	require.NoError(t, err)
	assert.Equal(t, uint64(9), found.Count)
	assert.True(t, found.CreatedAt.Equal(created))
	assert.True(t, found.ModifiedAt.Equal(updated))
}

func TestSummaryRepository_ListByDate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSummaryRepository(db)

	testutil.TestSummary(t, db, summaryDay, testutil.ArticleRef(1), "", 2)
	testutil.TestSummary(t, db, summaryDay, testutil.ArticleRef(2), "", 7)
	testutil.TestSummary(t, db, summaryDay.AddDays(-1), testutil.ArticleRef(3), "", 100)

	summaries, err := repo.ListByDate(context.Background(), summaryDay)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, uint64(2), summaries[0].EntityID)
	assert.Equal(t, uint64(1), summaries[1].EntityID)
}

func TestSummaryRepository_SumTrending(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSummaryRepository(db)
	ctx := context.Background()

	testutil.TestSummary(t, db, summaryDay, testutil.ArticleRef(1), "", 3)
	testutil.TestSummary(t, db, summaryDay.AddDays(-1), testutil.ArticleRef(1), "", 4)
	testutil.TestSummary(t, db, summaryDay, testutil.ArticleRef(2), "", 7)
	testutil.TestSummary(t, db, summaryDay, testutil.ArticleRef(3), "featured", 50)
	testutil.TestSummary(t, db, summaryDay.AddDays(-10), testutil.ArticleRef(4), "", 60)

	t.Run("ties broken by entity id", func(t *testing.T) {
		rows, err := repo.SumTrending(ctx, testutil.EntityTypeArticle, summaryDay.AddDays(-7), "")
		require.NoError(t, err)
		require.Len(t, rows, 2)

		assert.Equal(t, TrendingRow{EntityType: "article", EntityID: 1, Kind: "", NumViews: 7}, rows[0])
		assert.Equal(t, TrendingRow{EntityType: "article", EntityID: 2, Kind: "", NumViews: 7}, rows[1])
	})

	t.Run("since is inclusive", func(t *testing.T) {
		rows, err := repo.SumTrending(ctx, testutil.EntityTypeArticle, summaryDay.AddDays(-10), "")
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, uint64(4), rows[0].EntityID)
	})

	t.Run("kind exact match", func(t *testing.T) {
		rows, err := repo.SumTrending(ctx, testutil.EntityTypeArticle, summaryDay.AddDays(-7), "featured")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, uint64(3), rows[0].EntityID)
		assert.Equal(t, int64(50), rows[0].NumViews)
	})

	t.Run("other type", func(t *testing.T) {
		rows, err := repo.SumTrending(ctx, "video", summaryDay.AddDays(-30), "")
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}
