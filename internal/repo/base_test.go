package repo

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	return conn
}

type lockRow struct {
	ID   int
	Name string
}

func TestNewBaseStoresConnection(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)
	require.Same(t, db, base.db)
}

func TestBaseDB_BindsContext(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)

	ctx := context.WithValue(context.Background(), struct{}{}, "value")
	withCtx := base.DB(ctx)
	require.NotNil(t, withCtx.Statement)
	require.Equal(t, ctx, withCtx.Statement.Context)

	//nolint:staticcheck // nil context returns the raw connection
	require.Same(t, db, base.DB(nil))
}

func TestForUpdateSkipLockedRendersOnPostgres(t *testing.T) {
	conn, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost dbname=unused"}), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	base := NewBase(conn)
	var rows []lockRow
	stmt := base.ForUpdateSkipLocked(context.Background()).Where("name = ?", "x").Find(&rows).Statement
	require.Contains(t, stmt.SQL.String(), "FOR UPDATE SKIP LOCKED")

	stmt = base.ForUpdate(context.Background()).Find(&rows).Statement
	require.Contains(t, stmt.SQL.String(), "FOR UPDATE")
}

func TestForUpdateIsDroppedOnSQLite(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Exec("CREATE TABLE lock_rows (id INTEGER PRIMARY KEY, name TEXT)").Error)
	require.NoError(t, db.Exec("INSERT INTO lock_rows (id, name) VALUES (1, 'a')").Error)

	var rows []lockRow
	require.NoError(t, NewBase(db).ForUpdateSkipLocked(context.Background()).Find(&rows).Error)
	require.Len(t, rows, 1)
}
