package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabase_PingAndStats(t *testing.T) {
	gormDB, mock := newMockDB(t)

	db := NewDatabaseFromGorm(gormDB)
	require.NoError(t, db.Ping(context.Background()))

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, stats.OpenConnections, 0)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabase_Close(t *testing.T) {
	gormDB, mock := newMockDB(t)
	mock.ExpectClose()

	require.NoError(t, NewDatabaseFromGorm(gormDB).Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
