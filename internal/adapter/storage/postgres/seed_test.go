package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestSeed_FreshDatabase(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM accounts WHERE wallet_address").
		WithArgs("0xadmin").
		WillReturnRows(pgxmock.NewRows(accountTestColumns()))
	mock.ExpectExec("INSERT INTO accounts").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO token_balances").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	for _, dc := range defaultConfigs {
		mock.ExpectQuery("FROM configs WHERE config_key").
			WithArgs(dc.key).
			WillReturnRows(pgxmock.NewRows(configTestColumns()))
		mock.ExpectQuery("INSERT INTO configs").
			WithArgs(dc.key, dc.value, pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"config_id", "last_updated"}).
				AddRow(int64(1), time.Now().UTC()))
	}

	err = Seed(context.Background(), NewAccountRepo(mock), NewTokenRepo(mock), NewConfigRepo(mock), "0xADMIN", zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSeed_AlreadySeededIsNoop(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	admin := newTestAccount("0xadmin")
	admin.IsAdmin = true
	mock.ExpectQuery("FROM accounts WHERE wallet_address").
		WithArgs("0xadmin").
		WillReturnRows(accountRow(admin))

	for _, dc := range defaultConfigs {
		mock.ExpectQuery("FROM configs WHERE config_key").
			WithArgs(dc.key).
			WillReturnRows(pgxmock.NewRows(configTestColumns()).
				AddRow(int64(1), dc.key, dc.value, time.Now().UTC(), (*string)(nil)))
	}

	err = Seed(context.Background(), NewAccountRepo(mock), NewTokenRepo(mock), NewConfigRepo(mock), "0xadmin", zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
