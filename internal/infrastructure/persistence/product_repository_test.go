package persistence

import (
	"context"
	"testing"

	"github.com/marketplace/backend/internal/domain/catalog"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogRepo(t *testing.T) (*GormProductRepository, fixtures) {
	db := newSQLiteDB(t)
	require.NoError(t, db.Create(&[]models.CategoryModel{
		{Name: "Kitchen"}, {Name: "Garden"},
	}).Error)
	return NewGormProductRepository(db), fixtures{db: db, t: t}
}

func createProduct(t *testing.T, repo *GormProductRepository, seller, barcode, name string, category *string, variations ...catalog.Variation) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(seller, barcode, name)
	require.NoError(t, err)
	require.NoError(t, p.ReplaceVariations(variations))
	p.Category = category
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func variation(name, price string, stock int) catalog.Variation {
	return catalog.Variation{Name: name, Price: decimal.RequireFromString(price), Stock: stock}
}

func TestGormProductRepository_CreateAndFind(t *testing.T) {
	repo, _ := newCatalogRepo(t)
	ctx := context.Background()
	kitchen := "Kitchen"

	createProduct(t, repo, "seller-1", "B1", "Mug", &kitchen, variation("Red", "5.00", 3), variation("Blue", "6.00", 0))
	require.NoError(t, repo.AddImage(ctx, "B1", "https://cdn.example.com/b.png"))
	require.NoError(t, repo.AddImage(ctx, "B1", "https://cdn.example.com/a.png"))

	p, err := repo.FindByBarcode(ctx, "B1")
	require.NoError(t, err)
	assert.Equal(t, "Mug", p.Name)
	require.Len(t, p.Variations, 2)
	assert.Equal(t, "Blue", p.Variations[0].Name)
	require.NotNil(t, p.Category)
	assert.Equal(t, "Kitchen", *p.Category)
	assert.Equal(t, []string{"https://cdn.example.com/a.png", "https://cdn.example.com/b.png"}, p.Images)

	err = repo.AddImage(ctx, "B1", "https://cdn.example.com/a.png")
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	_, err = repo.FindByBarcode(ctx, "missing")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormProductRepository_ListBySeller(t *testing.T) {
	repo, _ := newCatalogRepo(t)
	ctx := context.Background()
	kitchen := "Kitchen"

	createProduct(t, repo, "seller-1", "A1", "Red Mug", &kitchen, variation("Red / M", "5.00", 3))
	createProduct(t, repo, "seller-1", "A2", "Garden Hose", nil, variation("Green / XL", "25.00", 0))
	createProduct(t, repo, "seller-1", "A3", "Teapot", &kitchen, variation("White / M", "15.00", 2))
	createProduct(t, repo, "seller-2", "Z9", "Other Mug", nil, variation("Red / M", "5.00", 3))
	require.NoError(t, repo.AddImage(ctx, "A3", "https://cdn.example.com/teapot.png"))

	barcodes := func(rows []catalog.ProductSummary) []string {
		out := make([]string, 0, len(rows))
		for _, r := range rows {
			out = append(out, r.Barcode)
		}
		return out
	}

	tests := []struct {
		name   string
		filter catalog.ProductFilter
		want   []string
	}{
		{"default sort is barcode desc", catalog.ProductFilter{}, []string{"A3", "A2", "A1"}},
		{"ascending by name", catalog.ProductFilter{OrderBy: "Name", Ascending: true}, []string{"A2", "A1", "A3"}},
		{"unknown sort falls back to barcode", catalog.ProductFilter{OrderBy: "price; --", Ascending: true}, []string{"A1", "A2", "A3"}},
		{"search matches name", catalog.ProductFilter{Search: "mug"}, []string{"A1"}},
		{"search matches barcode", catalog.ProductFilter{Search: "a2"}, []string{"A2"}},
		{"min price", catalog.ProductFilter{MinPrice: decPtr("10"), Ascending: true}, []string{"A2", "A3"}},
		{"max price", catalog.ProductFilter{MaxPrice: decPtr("10")}, []string{"A1"}},
		{"size", catalog.ProductFilter{Size: "xl"}, []string{"A2"}},
		{"color", catalog.ProductFilter{Color: "white"}, []string{"A3"}},
		{"category", catalog.ProductFilter{Category: "Kitchen", Ascending: true}, []string{"A1", "A3"}},
		{"in stock", catalog.ProductFilter{Stock: catalog.StockIn, Ascending: true}, []string{"A1", "A3"}},
		{"out of stock", catalog.ProductFilter{Stock: catalog.StockOut}, []string{"A2"}},
		{"with images", catalog.ProductFilter{HasImages: catalog.ImagesWith}, []string{"A3"}},
		{"without images", catalog.ProductFilter{HasImages: catalog.ImagesWithout}, []string{"A2", "A1"}},
		{"limit and offset", catalog.ProductFilter{Limit: 1, Offset: 1}, []string{"A2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := repo.ListBySeller(ctx, "seller-1", tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, barcodes(rows))
		})
	}

	rows, err := repo.ListBySeller(ctx, "seller-1", catalog.ProductFilter{HasImages: catalog.ImagesWith})
	require.NoError(t, err)
	require.NotNil(t, rows[0].ImageURL)
	assert.Equal(t, "https://cdn.example.com/teapot.png", *rows[0].ImageURL)
	require.NotNil(t, rows[0].MinPrice)
	assert.True(t, rows[0].MinPrice.Equal(decimal.RequireFromString("15")))
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestGormProductRepository_PublicListings(t *testing.T) {
	repo, _ := newCatalogRepo(t)
	ctx := context.Background()
	garden := "Garden"

	createProduct(t, repo, "seller-1", "A1", "Rake", &garden)
	createProduct(t, repo, "seller-2", "A2", "Garden Hose", &garden)
	createProduct(t, repo, "seller-2", "A3", "Mug", nil)

	all, err := repo.Search(ctx, "", 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	found, err := repo.Search(ctx, "HOSE", 10, 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "A2", found[0].Barcode)

	inGarden, err := repo.ListByCategory(ctx, "Garden", 10, 0)
	require.NoError(t, err)
	require.Len(t, inGarden, 2)
	assert.Equal(t, "Garden Hose", inGarden[0].Name)
}

func TestGormProductRepository_UpdateAndDelete(t *testing.T) {
	repo, f := newCatalogRepo(t)
	ctx := context.Background()
	kitchen := "Kitchen"
	createProduct(t, repo, "seller-1", "B1", "Mug", &kitchen, variation("Red", "5.00", 3))

	name := "Big Mug"
	err := repo.Update(ctx, "seller-2", "B1", catalog.ProductPatch{Name: &name})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	garden := "Garden"
	require.NoError(t, repo.Update(ctx, "seller-1", "B1", catalog.ProductPatch{
		Name:              &name,
		ReplaceVariations: true,
		Variations:        []catalog.Variation{variation("Green", "7.00", 1)},
		Category:          &garden,
	}))

	p, err := repo.FindByBarcode(ctx, "B1")
	require.NoError(t, err)
	assert.Equal(t, "Big Mug", p.Name)
	require.Len(t, p.Variations, 1)
	assert.Equal(t, "Green", p.Variations[0].Name)
	assert.Equal(t, "Garden", *p.Category)

	require.NoError(t, repo.Update(ctx, "seller-1", "B1", catalog.ProductPatch{ClearCategory: true}))
	p, err = repo.FindByBarcode(ctx, "B1")
	require.NoError(t, err)
	assert.Nil(t, p.Category)

	err = repo.ReplaceVariations(ctx, "seller-2", "B1", nil)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	require.NoError(t, repo.ReplaceVariations(ctx, "seller-1", "B1", []catalog.Variation{variation("Black", "9.00", 4)}))
	v, err := repo.FindVariation(ctx, "B1", "Black")
	require.NoError(t, err)
	assert.Equal(t, 4, v.Stock)

	require.NoError(t, repo.AssignCategory(ctx, "B1", "Kitchen"))
	require.NoError(t, repo.AddImage(ctx, "B1", "u1"))
	require.NoError(t, repo.RemoveImage(ctx, "B1", "u1"))
	assert.ErrorIs(t, repo.RemoveImage(ctx, "B1", "u1"), shared.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, "seller-2", "B1"), shared.ErrNotFound)
	require.NoError(t, repo.Delete(ctx, "seller-1", "B1"))

	var count int64
	require.NoError(t, f.db.Model(&models.VariationModel{}).Where("bar_code = ?", "B1").Count(&count).Error)
	assert.Zero(t, count)
}

func TestGormCategoryRepository(t *testing.T) {
	_, f := newCatalogRepo(t)
	repo := NewGormCategoryRepository(f.db)
	ctx := context.Background()

	categories, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Garden", categories[0].Name)

	ok, err := repo.Exists(ctx, "Kitchen")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.Exists(ctx, "Toys")
	require.NoError(t, err)
	assert.False(t, ok)
}
