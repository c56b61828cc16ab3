package adapters

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var aggregateColumns = []string{
	"day", "distance_km", "time_sec", "fuel_l", "fuel_cost", "shipments", "session_count",
}

func TestPostgresAggregateRepository_Daily(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer mock.Close()
	repo := NewPostgresAggregateRepository(mock)

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)

	t.Run("ReturnsRollups", func(t *testing.T) {
		mock.ExpectQuery(`WITH daily_sessions AS`).
			WithArgs(from, to, "rider-1").
			WillReturnRows(pgxmock.NewRows(aggregateColumns).
				AddRow("2025-06-01", 42.5, int64(7200), 1.0625, 108.9, 9, 2).
				AddRow("2025-06-02", 10.0, int64(1800), 0.25, 25.625, 3, 1))

		aggs, err := repo.Daily(ctx, "rider-1", from, to)
		require.NoError(t, err)
		require.Len(t, aggs, 2)
		assert.Equal(t, "2025-06-01", aggs[0].Date)
		assert.Equal(t, 42.5, aggs[0].TotalDistanceKm)
		assert.Equal(t, int64(7200), aggs[0].TotalTimeSec)
		assert.Equal(t, 9, aggs[0].ShipmentsCompleted)
		assert.Equal(t, 1, aggs[1].SessionCount)
	})

	t.Run("FleetWide", func(t *testing.T) {
		mock.ExpectQuery(`WITH daily_sessions AS`).
			WithArgs(from, to, "").
			WillReturnRows(pgxmock.NewRows(aggregateColumns))

		aggs, err := repo.Daily(ctx, "", from, to)
		require.NoError(t, err)
		assert.Empty(t, aggs)
	})

	t.Run("QueryError", func(t *testing.T) {
		mock.ExpectQuery(`WITH daily_sessions AS`).
			WithArgs(from, to, "rider-1").
			WillReturnError(errors.New("relation does not exist"))

		_, err := repo.Daily(ctx, "rider-1", from, to)
		assert.Error(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
