package repository

import (
	"context"
	"testing"

	"golang-backtest/internal/model"
	"golang-backtest/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// capturingDB builds statements without a database and records the last
// query's SQL.
func capturingDB(t *testing.T) (*gorm.DB, *string) {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=test dbname=test sslmode=disable"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)

	var last string
	err = db.Callback().Query().After("gorm:query").Register("test:capture", func(tx *gorm.DB) {
		last = tx.Dialector.Explain(tx.Statement.SQL.String(), tx.Statement.Vars...)
	})
	require.NoError(t, err)
	return db, &last
}

func TestBacktestRunRepository_Get(t *testing.T) {
	db, sql := capturingDB(t)
	repo := NewBacktestRunRepository(db)

	runs, err := repo.Get(context.Background(), model.GetBacktestRunParam{StrategyID: "s-1", Limit: utils.ToPointer(10)})
	require.NoError(t, err)
	assert.Empty(t, runs)
	assert.Contains(t, *sql, `strategy_id = 's-1'`)
	assert.Contains(t, *sql, `ORDER BY created_at DESC`)
	assert.Contains(t, *sql, `LIMIT 10`)
}

func TestStrategyRepository_Get(t *testing.T) {
	db, sql := capturingDB(t)
	repo := NewStrategyRepository(db)

	_, err := repo.Get(context.Background(), model.GetStrategyParam{IsActive: utils.ToPointer(true)})
	require.NoError(t, err)
	assert.Contains(t, *sql, `is_active = true`)
	assert.NotContains(t, *sql, `LIMIT`)
}
