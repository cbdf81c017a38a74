package repository

import (
	"testing"

	"magari/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func walletRows(id, userID uint, balance int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "balance_cents", "currency"}).
		AddRow(id, userID, balance, "KES")
}

func TestCreditAppendsEntryWithResultingBalance(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewWalletRepository(gdb)

	mock.ExpectQuery("SELECT \\* FROM `wallets` WHERE user_id = ").
		WillReturnRows(walletRows(3, 7, 1000))
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `wallets` WHERE user_id = .* FOR UPDATE").
		WillReturnRows(walletRows(3, 7, 1000))
	mock.ExpectExec("INSERT INTO `ledger_entries`").
		WithArgs(3, int64(500), int64(1500), domain.EntryDeposit, "dep-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec("UPDATE `wallets` SET `balance_cents`=").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	entry, err := repo.Credit(7, 500, domain.EntryDeposit, "dep-1")
	require.NoError(t, err)
	assert.Equal(t, int64(500), entry.DeltaCents)
	assert.Equal(t, int64(1500), entry.ResultingBalanceCents)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDebitBeyondBalanceRollsBack(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewWalletRepository(gdb)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `wallets` WHERE user_id = .* FOR UPDATE").
		WillReturnRows(walletRows(3, 7, 100))
	mock.ExpectRollback()

	_, err := repo.Debit(7, 500, domain.EntryWithdrawalDebit, "wd-1")
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreditDuplicateSourceReturnsSentinel(t *testing.T) {
	// two concurrent credits for the same source both reach the insert; the
	// unique (entry_type, source_reference) index stops the loser, which must
	// roll back without touching the balance
	gdb, mock := newMockDB(t)
	repo := NewWalletRepository(gdb)

	mock.ExpectQuery("SELECT \\* FROM `wallets` WHERE user_id = ").
		WillReturnRows(walletRows(3, 7, 1000))
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `wallets` WHERE user_id = .* FOR UPDATE").
		WillReturnRows(walletRows(3, 7, 1000))
	mock.ExpectExec("INSERT INTO `ledger_entries`").
		WillReturnError(&mysqldrv.MySQLError{Number: 1062, Message: "Duplicate entry 'DEPOSIT-dep-1' for key 'idx_entry_source'"})
	mock.ExpectRollback()

	_, err := repo.Credit(7, 500, domain.EntryDeposit, "dep-1")
	assert.ErrorIs(t, err, ErrDuplicateEntry)
	assert.NoError(t, mock.ExpectationsWereMet())
}
