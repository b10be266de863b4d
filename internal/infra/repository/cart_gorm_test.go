package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"bookstore/internal/domain/model"
	infraRepo "bookstore/internal/infra/repository"
	repo "bookstore/internal/repository"
)

func seedCartWithItems(t *testing.T, db *gorm.DB, userID int64) (model.Cart, []model.CartItem) {
	t.Helper()

	cart := model.Cart{UserID: userID}
	require.NoError(t, db.Create(&cart).Error)

	items := []model.CartItem{
		{CartID: cart.ID, BookID: 10, Quantity: 2, UnitPriceSnapshot: 1200},
		{CartID: cart.ID, BookID: 11, Quantity: 1, UnitPriceSnapshot: 999},
	}
	require.NoError(t, db.Create(&items).Error)
	return cart, items
}

// 1ユーザー1カート（user_idのunique制約）
func TestCartGorm_OneCartPerUser(t *testing.T) {
	db := openTestDB(t)

	first := model.Cart{UserID: 1}
	require.NoError(t, db.Create(&first).Error)

	second := model.Cart{UserID: 1}
	assert.Error(t, db.Create(&second).Error)
}

// 同一(cart, book)の明細は1行だけ（composite unique index）
func TestCartGorm_OneLinePerCartAndBook(t *testing.T) {
	db := openTestDB(t)

	cart, _ := seedCartWithItems(t, db, 1)

	dup := model.CartItem{CartID: cart.ID, BookID: 10, Quantity: 1, UnitPriceSnapshot: 1200}
	assert.Error(t, db.Create(&dup).Error)
}

func TestCartGorm_FindByUserID_NotFound(t *testing.T) {
	db := openTestDB(t)
	r := infraRepo.NewCartGormRepository(db)

	_, err := r.FindByUserID(context.Background(), 42)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

// Clearは明細だけ消す。空カートに対してもエラーにならない。
func TestCartGorm_Clear(t *testing.T) {
	db := openTestDB(t)
	r := infraRepo.NewCartGormRepository(db)
	ctx := context.Background()

	cart, _ := seedCartWithItems(t, db, 1)

	assert.NoError(t, r.Clear(ctx, cart.ID))

	items, err := r.ListByCartID(ctx, cart.ID)
	assert.NoError(t, err)
	assert.Empty(t, items)

	// カート本体は残る
	got, err := r.FindByUserID(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, cart.ID, got.ID)

	// 空のカートをもう一度Clearしてもno-op
	assert.NoError(t, r.Clear(ctx, cart.ID))
}

// 所有判定はcartsをjoinする（明細IDだけでは信用しない）
func TestCartGorm_IsOwnedByUser(t *testing.T) {
	db := openTestDB(t)
	r := infraRepo.NewCartGormRepository(db)
	ctx := context.Background()

	_, items := seedCartWithItems(t, db, 1)

	owned, err := r.IsOwnedByUser(ctx, items[0].ID, 1)
	assert.NoError(t, err)
	assert.True(t, owned)

	// 他人のuser_idでは所有していない
	owned, err = r.IsOwnedByUser(ctx, items[0].ID, 2)
	assert.NoError(t, err)
	assert.False(t, owned)
}

func TestCartGorm_UpdateQuantity_NotFound(t *testing.T) {
	db := openTestDB(t)
	r := infraRepo.NewCartGormRepository(db)

	err := r.UpdateQuantity(context.Background(), 9999, 3)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestCartGorm_DeleteByID(t *testing.T) {
	db := openTestDB(t)
	r := infraRepo.NewCartGormRepository(db)
	ctx := context.Background()

	cart, items := seedCartWithItems(t, db, 1)

	assert.NoError(t, r.DeleteByID(ctx, items[0].ID))

	rest, err := r.ListByCartID(ctx, cart.ID)
	assert.NoError(t, err)
	assert.Len(t, rest, 1)
	assert.Equal(t, int64(11), rest[0].BookID)

	// 2回目は404
	assert.ErrorIs(t, r.DeleteByID(ctx, items[0].ID), repo.ErrNotFound)
}

// 明細のスナップショット価格は追加時のまま
func TestCartGorm_SnapshotPriceSurvivesBookPriceChange(t *testing.T) {
	db := openTestDB(t)
	r := infraRepo.NewCartGormRepository(db)
	ctx := context.Background()

	book := model.Book{Title: "A", Price: 1200, AuthorID: 1, CategoryID: 1}
	require.NoError(t, db.Create(&book).Error)

	cart := model.Cart{UserID: 1}
	require.NoError(t, db.Create(&cart).Error)
	item := model.CartItem{CartID: cart.ID, BookID: book.ID, Quantity: 1, UnitPriceSnapshot: book.Price}
	require.NoError(t, db.Create(&item).Error)

	// 値上げ
	require.NoError(t, db.Model(&model.Book{}).Where("id = ?", book.ID).Update("price", 5000).Error)

	got, err := r.FindByID(ctx, item.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1200), got.UnitPriceSnapshot)
}
