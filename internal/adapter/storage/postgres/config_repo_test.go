package postgres

import (
	"context"
	"testing"
	"time"

	"tokensale-platform/internal/core/domain"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func configTestColumns() []string {
	return []string{"config_id", "config_key", "config_value", "last_updated", "updated_by"}
}

func TestConfigRepo_Get(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewConfigRepo(mock)
	now := time.Now().UTC()

	mock.ExpectQuery("FROM configs WHERE config_key").
		WithArgs("ico_phase").
		WillReturnRows(pgxmock.NewRows(configTestColumns()).
			AddRow(int64(3), "ico_phase", "1", now, (*string)(nil)))

	entry, err := repo.Get(context.Background(), "ico_phase")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "1", entry.Value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfigRepo_Get_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewConfigRepo(mock)

	mock.ExpectQuery("FROM configs WHERE config_key").
		WithArgs("missing_key").
		WillReturnRows(pgxmock.NewRows(configTestColumns()))

	entry, err := repo.Get(context.Background(), "missing_key")
	require.NoError(t, err)
	assert.Nil(t, entry)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfigRepo_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewConfigRepo(mock)
	now := time.Now().UTC()

	rows := pgxmock.NewRows(configTestColumns()).
		AddRow(int64(1), "ico_phase", "1", now, (*string)(nil)).
		AddRow(int64(2), "private_treasury_note", "secret", now, (*string)(nil))

	mock.ExpectQuery("FROM configs ORDER BY config_key").
		WillReturnRows(rows)

	entries, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].IsPublic())
	assert.False(t, entries[1].IsPublic())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfigRepo_Upsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewConfigRepo(mock)
	admin := "0xadmin"
	entry := &domain.ConfigEntry{Key: "ico_phase", Value: "2", UpdatedBy: &admin}
	updated := time.Now().UTC()

	mock.ExpectQuery("INSERT INTO configs").
		WithArgs(entry.Key, entry.Value, entry.UpdatedBy).
		WillReturnRows(pgxmock.NewRows([]string{"config_id", "last_updated"}).AddRow(int64(3), updated))

	saved, err := repo.Upsert(context.Background(), entry)
	require.NoError(t, err)
	assert.Equal(t, int64(3), saved.ID)
	assert.Equal(t, "2", saved.Value)
	assert.Equal(t, updated, saved.LastUpdated)
	assert.NoError(t, mock.ExpectationsWereMet())
}
