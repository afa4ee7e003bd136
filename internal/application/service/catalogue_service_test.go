package service

import (
	"testing"

	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProduct_StartsWithoutStock(t *testing.T) {
	f := newFixture(t)

	p, err := f.catalogue.CreateProduct(f.ctx, &ProductInput{Name: "  Lotion ", Code: "LOT-1", Price: 1200})
	require.NoError(t, err)
	assert.Equal(t, "Lotion", p.Name)
	assert.Equal(t, 0, p.Stock)

	_, err = f.catalogue.CreateProduct(f.ctx, &ProductInput{Name: "Other", Code: "LOT-1"})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	_, err = f.catalogue.CreateProduct(f.ctx, &ProductInput{Name: " "})
	assert.ErrorIs(t, err, apperror.ErrUnprocessable)
}

func TestUpdateProduct_KeepsStock(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Oil", enum.ProductTypeProduct, 900, 6)

	price := int64(1100)
	name := "Argan oil"
	updated, err := f.catalogue.UpdateProduct(f.ctx, p.ID, &UpdateProductInput{Name: &name, Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "Argan oil", updated.Name)
	assert.Equal(t, int64(1100), updated.Price)
	assert.Equal(t, 6, updated.Stock)

	negative := int64(-1)
	_, err = f.catalogue.UpdateProduct(f.ctx, p.ID, &UpdateProductInput{Price: &negative})
	assert.ErrorIs(t, err, apperror.ErrUnprocessable)
}

func TestListProducts_Filter(t *testing.T) {
	f := newFixture(t)
	f.product(t, "Brush", enum.ProductTypeProduct, 100, 0)
	f.product(t, "Massage", enum.ProductTypeService, 100, 0)

	kind := enum.ProductTypeService
	result, err := f.catalogue.ListProducts(f.ctx, &repository.ProductFilterParams{ProductType: &kind})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Massage", result.Items[0].Name)
	assert.Equal(t, int64(1), result.Pagination.Total)
}

func TestSeedTables(t *testing.T) {
	f := newFixture(t)

	n, err := f.catalogue.SeedTables(f.ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = f.catalogue.SeedTables(f.ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	tables, err := f.catalogue.ListTables(f.ctx)
	require.NoError(t, err)
	require.Len(t, tables, 3)
	assert.Equal(t, "Table 1", tables[0].Name)
	assert.Equal(t, enum.TableStatusAvailable, tables[0].Status)
}
