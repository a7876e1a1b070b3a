package adapter

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/funcsql/pkg/relation"
)

func mockConn(t *testing.T) (*Conn, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
	})
	return &Conn{DB: db}, mock
}

func TestConn_NotConnected(t *testing.T) {
	ctx := context.Background()
	var c Conn

	assert.False(t, c.Connected())
	assert.NoError(t, c.Close())
	assert.ErrorIs(t, c.Exec(ctx, "SELECT 1"), ErrNotConnected)

	_, err := c.Query(ctx, "SELECT 1")
	assert.ErrorIs(t, err, ErrNotConnected)

	_, err = c.RelationsFromQuery(ctx, ForeignKeysQuery)
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestConn_Close(t *testing.T) {
	c, mock := mockConn(t)
	mock.ExpectClose()

	assert.True(t, c.Connected())
	assert.NoError(t, c.Close())
}

func TestConn_Exec(t *testing.T) {
	c, mock := mockConn(t)
	mock.ExpectExec("CREATE TABLE customers").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO nowhere").WillReturnError(assert.AnError)

	require.NoError(t, c.Exec(context.Background(), "CREATE TABLE customers (id INT)"))

	err := c.Exec(context.Background(), "INSERT INTO nowhere VALUES (1)")
	assert.ErrorIs(t, err, assert.AnError)
	assert.ErrorContains(t, err, "failed to execute SQL")
}

func TestConn_Query(t *testing.T) {
	tests := []struct {
		name   string
		mock   func(sqlmock.Sqlmock)
		want   *Result
		errMsg string
	}{
		{
			name: "rows with byte slices",
			mock: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(`SELECT t0\.id, t0\.name FROM customers t0`).WillReturnRows(
					sqlmock.NewRows([]string{"id", "name"}).
						AddRow(int64(1), []byte("Alice")).
						AddRow(int64(2), nil))
			},
			want: &Result{
				Columns: []string{"id", "name"},
				Rows:    [][]any{{int64(1), "Alice"}, {int64(2), nil}},
			},
		},
		{
			name: "no rows",
			mock: func(m sqlmock.Sqlmock) {
				m.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"id"}))
			},
			want: &Result{Columns: []string{"id"}},
		},
		{
			name: "query fails",
			mock: func(m sqlmock.Sqlmock) {
				m.ExpectQuery("SELECT").WillReturnError(assert.AnError)
			},
			errMsg: "failed to execute query",
		},
		{
			name: "row fails",
			mock: func(m sqlmock.Sqlmock) {
				m.ExpectQuery("SELECT").WillReturnRows(
					sqlmock.NewRows([]string{"id"}).AddRow(int64(1)).RowError(0, assert.AnError))
			},
			errMsg: "error iterating rows",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, mock := mockConn(t)
			tt.mock(mock)

			got, err := c.Query(context.Background(), "SELECT t0.id, t0.name FROM customers t0")
			if tt.errMsg != "" {
				assert.Nil(t, got)
				assert.ErrorContains(t, err, tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConn_RelationsFromQuery(t *testing.T) {
	c, mock := mockConn(t)
	mock.ExpectQuery("information_schema.referential_constraints").WillReturnRows(
		sqlmock.NewRows([]string{"table_name", "column_name", "ref_table", "ref_column"}).
			AddRow("orders", "customer_id", "customers", "id").
			AddRow("orders", "note_id", "notes", nil).
			AddRow([]byte("customers"), []byte("country_id"), "countries", "id"))

	relations, err := c.RelationsFromQuery(context.Background(), ForeignKeysQuery)
	require.NoError(t, err)
	assert.Equal(t, []relation.Relation{
		{Table1: "orders", Column1: "customer_id", Table2: "customers", Column2: "id"},
		{Table1: "customers", Column1: "country_id", Table2: "countries", Column2: "id"},
	}, relations)
}
