package postgres

import (
	"testing"

	"golang-backtest/config"

	"github.com/stretchr/testify/assert"
	gormlogger "gorm.io/gorm/logger"
)

func TestDSN(t *testing.T) {
	cfg := config.Database{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "backtest", SSLMode: "disable"}

	assert.Equal(t, "host=db user=u password=p dbname=backtest port=5432 sslmode=disable", DSN(cfg))
	assert.Equal(t, "postgres://u:p@db:5432/backtest?sslmode=disable", MigrationURL(cfg))

	cfg.TimeZone = "UTC"
	assert.Contains(t, DSN(cfg), "TimeZone=UTC")
}

func TestGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, gormLogLevel("Silent"))
	assert.Equal(t, gormlogger.Info, gormLogLevel("Info"))
	assert.Equal(t, gormlogger.Warn, gormLogLevel(""))
}
