// Package testutil はテスト用のDBとデータ投入を提供する。
package testutil

import (
	"context"
	"testing"
	"time"

	"cakeshop/internal/config"
	"cakeshop/internal/domain/model"
	"cakeshop/internal/infra/db"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB はテストごとに独立したインメモリSQLiteを作り、マイグレーション済みで返す。
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := db.Open(config.DBConfig{
		Driver:       "sqlite",
		DSN:          "file:" + uuid.NewString() + "?mode=memory&cache=shared&_fk=1",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	t.Cleanup(func() { _ = db.Close(gdb) })
	return gdb
}

func CreateUser(t *testing.T, gdb *gorm.DB, username string, role model.Role) model.User {
	t.Helper()

	u := model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, gdb.Create(&u).Error)
	return u
}

func CreateCake(t *testing.T, gdb *gorm.DB, name string, price string, stock int64, images ...string) model.Cake {
	t.Helper()

	c := model.Cake{
		Name:        name,
		Description: name + " description",
		Price:       decimal.RequireFromString(price),
		Stock:       stock,
		Category:    "classic",
	}
	for i, u := range images {
		c.Images = append(c.Images, model.CakeImage{ImageURL: u, IsPrimary: i == 0})
	}
	require.NoError(t, gdb.Create(&c).Error)
	return c
}

// AddCartEntry はカート行を直接作る。created_at をずらして並び順を固定する。
func AddCartEntry(t *testing.T, gdb *gorm.DB, userID, cakeID, qty int64) model.CartEntry {
	t.Helper()

	e := model.CartEntry{UserID: userID, CakeID: cakeID, Quantity: qty}
	require.NoError(t, gdb.Create(&e).Error)
	time.Sleep(2 * time.Millisecond)
	return e
}

func StockOf(t *testing.T, gdb *gorm.DB, cakeID int64) int64 {
	t.Helper()

	var c model.Cake
	require.NoError(t, gdb.WithContext(context.Background()).Where("id = ?", cakeID).First(&c).Error)
	return c.Stock
}

func CartQuantities(t *testing.T, gdb *gorm.DB, userID int64) map[int64]int64 {
	t.Helper()

	var entries []model.CartEntry
	require.NoError(t, gdb.Where("user_id = ?", userID).Find(&entries).Error)

	out := make(map[int64]int64, len(entries))
	for _, e := range entries {
		out[e.CakeID] = e.Quantity
	}
	return out
}

func CountRows(t *testing.T, gdb *gorm.DB, m interface{}) int64 {
	t.Helper()

	var n int64
	require.NoError(t, gdb.Model(m).Count(&n).Error)
	return n
}
