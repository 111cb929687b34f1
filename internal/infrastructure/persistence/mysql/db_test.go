package mysql

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDB_HealthCheck(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing()

	d := &DB{DB: db}
	assert.NoError(t, d.HealthCheck(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_Conn(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	d := &DB{DB: db}
	ctx := context.Background()
	assert.Equal(t, db, d.conn(ctx))
	assert.False(t, inTx(ctx))

	mock.ExpectBegin()
	tx, err := db.Begin()
	require.NoError(t, err)

	txCtx := withTx(ctx, tx)
	assert.Equal(t, tx, d.conn(txCtx))
	assert.True(t, inTx(txCtx))
}

func TestIsDuplicateKey(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "一意制約違反", err: &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, want: true},
		{name: "ラップされた一意制約違反", err: fmt.Errorf("insert: %w", &mysql.MySQLError{Number: 1062}), want: true},
		{name: "その他のMySQLエラー", err: &mysql.MySQLError{Number: 1213}, want: false},
		{name: "MySQL以外のエラー", err: errors.New("boom"), want: false},
		{name: "nil", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isDuplicateKey(tt.err))
		})
	}
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "", placeholders(0))
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?, ?, ?", placeholders(3))
}
