package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPackage(t *testing.T, f *fixture, sessions int) (*entity.Product, *entity.CustomerTreatmentPackage) {
	t.Helper()
	p, err := f.catalogue.CreateProduct(f.ctx, &ProductInput{
		Name:              "Laser",
		ProductType:       enum.ProductTypeTreatment,
		TreatmentSessions: sessions,
	})
	require.NoError(t, err)
	order, err := f.orders.CreateOrder(f.ctx, &CreateOrderInput{
		Items:         []entity.CartItem{cartItem(p, 1)},
		CustomerName:  "Zara",
		CustomerPhone: "0744",
	})
	require.NoError(t, err)
	packages, err := f.packages.ListCustomerPackages(f.ctx, *order.CustomerID, false)
	require.NoError(t, err)
	require.Len(t, packages, 1)
	return p, &packages[0]
}

func TestSessionUseReturnRoundTrip(t *testing.T) {
	f := newFixture(t)
	_, pkg := newPackage(t, f, 3)

	used, err := f.packages.UseSession(f.ctx, pkg.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, used.UsedSessionNumbers)
	assert.Equal(t, 2, used.RemainingSessions)
	assert.True(t, used.IsActive)

	returned, err := f.packages.ReturnSession(f.ctx, pkg.ID, 2)
	require.NoError(t, err)
	assert.Empty(t, returned.UsedSessionNumbers)
	assert.Equal(t, pkg.RemainingSessions, returned.RemainingSessions)
	assert.Equal(t, pkg.IsActive, returned.IsActive)
}

func TestSessionUse_DuplicateIsNoop(t *testing.T) {
	f := newFixture(t)
	_, pkg := newPackage(t, f, 3)

	_, err := f.packages.UseSession(f.ctx, pkg.ID, 1)
	require.NoError(t, err)
	again, err := f.packages.UseSession(f.ctx, pkg.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, again.UsedSessionNumbers)
	assert.Equal(t, 2, again.RemainingSessions)

	notUsed, err := f.packages.ReturnSession(f.ctx, pkg.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, notUsed.UsedSessionNumbers)
	assert.Equal(t, 2, notUsed.RemainingSessions)
}

func TestSessionUse_ExhaustAndReactivate(t *testing.T) {
	f := newFixture(t)
	p, pkg := newPackage(t, f, 2)

	_, err := f.packages.UseSession(f.ctx, pkg.ID, 1)
	require.NoError(t, err)
	done, err := f.packages.UseSession(f.ctx, pkg.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, done.RemainingSessions)
	assert.False(t, done.IsActive)

	found, err := f.packages.GetPackageForService(f.ctx, pkg.CustomerID, p.ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	back, err := f.packages.ReturnSession(f.ctx, pkg.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, back.RemainingSessions)
	assert.True(t, back.IsActive)

	found, err = f.packages.GetPackageForService(f.ctx, pkg.CustomerID, p.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, pkg.ID, found.ID)
}

func TestSessionUse_UnknownPackageIsSilent(t *testing.T) {
	f := newFixture(t)

	pkg, err := f.packages.UseSession(f.ctx, uuid.New(), 1)
	assert.NoError(t, err)
	assert.Nil(t, pkg)

	pkg, err = f.packages.ReturnSession(f.ctx, uuid.New(), 1)
	assert.NoError(t, err)
	assert.Nil(t, pkg)
}

func TestSessionUse_OutOfRange(t *testing.T) {
	f := newFixture(t)
	_, pkg := newPackage(t, f, 2)

	_, err := f.packages.UseSession(f.ctx, pkg.ID, 0)
	assert.ErrorIs(t, err, apperror.ErrBadRequest)
	_, err = f.packages.UseSession(f.ctx, pkg.ID, 3)
	assert.ErrorIs(t, err, apperror.ErrBadRequest)
}

func TestGetPackageForService_IgnoresOtherServices(t *testing.T) {
	f := newFixture(t)
	_, pkg := newPackage(t, f, 2)

	found, err := f.packages.GetPackageForService(f.ctx, pkg.CustomerID, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, found)
}
