package db_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"cakeshop/internal/config"
	"cakeshop/internal/domain/model"
	"cakeshop/internal/infra/db"
	"cakeshop/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type recordingWriter struct {
	lines []string
}

func (w *recordingWriter) Printf(format string, args ...interface{}) {
	w.lines = append(w.lines, fmt.Sprintf(format, args...))
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := db.Open(config.DBConfig{Driver: "oracle"})
	assert.Error(t, err)

	_, err = db.Open(config.DBConfig{Driver: "sqlite"})
	assert.Error(t, err)
}

func TestMigrateAndPing(t *testing.T) {
	gdb := testutil.NewDB(t)

	require.NoError(t, db.Ping(context.Background(), gdb))
	for _, table := range []string{"users", "cakes", "cake_images", "carts", "orders", "order_items", "contact_messages", "inventory_adjustments", "audit_logs"} {
		assert.True(t, gdb.Migrator().HasTable(table), table)
	}

	// 二回目も成功する
	require.NoError(t, db.Migrate(gdb))
}

func TestEnsureAdmin(t *testing.T) {
	gdb := testutil.NewDB(t)
	ctx := context.Background()

	created, err := db.EnsureAdmin(ctx, gdb, " Admin@Example.com ", "changeme1", "admin")
	require.NoError(t, err)
	assert.True(t, created)

	var admin model.User
	require.NoError(t, gdb.Where("email = ?", "admin@example.com").First(&admin).Error)
	assert.Equal(t, model.RoleAdmin, admin.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("changeme1")))

	// 既にいれば作らない
	created, err = db.EnsureAdmin(ctx, gdb, "admin@example.com", "other", "admin")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int64(1), testutil.CountRows(t, gdb, &model.User{}))

	created, err = db.EnsureAdmin(ctx, gdb, "", "x", "admin")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestNewLogger_SkipsRecordNotFound(t *testing.T) {
	gdb := testutil.NewDB(t)
	w := &recordingWriter{}
	quiet := gdb.Session(&gorm.Session{Logger: db.NewLogger(w, false)})

	var u model.User
	err := quiet.Where("email = ?", "nobody@example.com").First(&u).Error
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	assert.Empty(t, w.lines)

	// 本当のエラーは出す
	err = quiet.Exec("SELECT * FROM no_such_table").Error
	require.Error(t, err)
	assert.NotEmpty(t, w.lines)
}

func TestNewLogger_LogSQL(t *testing.T) {
	gdb := testutil.NewDB(t)
	w := &recordingWriter{}
	verbose := gdb.Session(&gorm.Session{Logger: db.NewLogger(w, true)})

	var n int64
	require.NoError(t, verbose.Model(&model.Cake{}).Count(&n).Error)
	require.NotEmpty(t, w.lines)
	assert.Contains(t, w.lines[len(w.lines)-1], "cakes")
}
