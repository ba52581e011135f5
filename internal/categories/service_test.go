package categories

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cafemenu/cafemenu-backend/pkg/auth"
	"github.com/cafemenu/cafemenu-backend/pkg/db"
	"github.com/cafemenu/cafemenu-backend/pkg/db/models"
	"github.com/cafemenu/cafemenu-backend/pkg/enums"
	pkgerrors "github.com/cafemenu/cafemenu-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := openTestDB(t)
	svc, err := NewService(NewRepository(conn), db.FromConn(conn))
	require.NoError(t, err)
	return svc, conn
}

func mustCreateMenuItem(t *testing.T, conn *gorm.DB, categoryID, placeID int64) *models.MenuItem {
	t.Helper()
	item := &models.MenuItem{
		Name:       "Latte",
		Price:      decimal.NewFromFloat(4.50),
		CategoryID: categoryID,
		PlaceID:    placeID,
	}
	require.NoError(t, conn.Create(item).Error)
	return item
}

func TestCreateCategorySkipsPlaceValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// the tenant registry has no place 777; insertion still succeeds
	created, err := svc.Create(ctx, nil, CreateCategoryInput{
		Name:        "Coffee",
		Icon:        "x",
		Description: "d",
		PlaceID:     777,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 777, created.PlaceID)
	assert.EqualValues(t, 0, created.ItemCount)
}

func TestCreateThenGetWithItemCountZero(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, nil, CreateCategoryInput{Name: "Coffee", Icon: "x", Description: "d", PlaceID: 1})
	require.NoError(t, err)

	placeID := int64(1)
	got, err := svc.GetByID(ctx, created.ID, &placeID)
	require.NoError(t, err)
	assert.Equal(t, "Coffee", got.Name)
	assert.EqualValues(t, 0, got.ItemCount)
}

func TestListFiltersByPlace(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	mine, err := svc.Create(ctx, nil, CreateCategoryInput{Name: "Mine", PlaceID: 1})
	require.NoError(t, err)
	other, err := svc.Create(ctx, nil, CreateCategoryInput{Name: "Other", PlaceID: 2})
	require.NoError(t, err)

	mustCreateMenuItem(t, conn, mine.ID, 1)
	mustCreateMenuItem(t, conn, mine.ID, 1)

	placeID := int64(1)
	listed, err := svc.List(ctx, &placeID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, mine.ID, listed[0].ID)
	assert.EqualValues(t, 2, listed[0].ItemCount)

	all, err := svc.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	otherPlace := int64(2)
	scoped, err := svc.List(ctx, &otherPlace)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, other.ID, scoped[0].ID)
}

func TestGetCategoryTenantMissLooksLikeMissingID(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, nil, CreateCategoryInput{Name: "Scoped", PlaceID: 1})
	require.NoError(t, err)

	wrongPlace := int64(2)
	_, missErr := svc.GetByID(ctx, created.ID, &wrongPlace)
	require.Error(t, missErr)

	_, absentErr := svc.GetByID(ctx, 99999, nil)
	require.Error(t, absentErr)

	missTyped := pkgerrors.As(missErr)
	absentTyped := pkgerrors.As(absentErr)
	require.NotNil(t, missTyped)
	require.NotNil(t, absentTyped)
	assert.Equal(t, absentTyped.Code(), missTyped.Code())
	assert.Equal(t, absentTyped.Message(), missTyped.Message())
}

func TestUpdateCategory(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, nil, CreateCategoryInput{Name: "Before", Icon: "a", PlaceID: 1})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, nil, created.ID, UpdateCategoryInput{Name: "After", Icon: "b", PlaceID: 1})
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Name)
	assert.Equal(t, "b", updated.Icon)

	_, err = svc.Update(ctx, nil, 12345, UpdateCategoryInput{Name: "x", PlaceID: 1})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestDeleteCategoryCascadesToMenuItems(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, nil, CreateCategoryInput{Name: "Doomed", PlaceID: 1})
	require.NoError(t, err)
	mustCreateMenuItem(t, conn, created.ID, 1)
	mustCreateMenuItem(t, conn, created.ID, 1)

	require.NoError(t, svc.Delete(ctx, nil, created.ID))

	var itemCount int64
	require.NoError(t, conn.Model(&models.MenuItem{}).Where("category_id = ?", created.ID).Count(&itemCount).Error)
	assert.Zero(t, itemCount)

	err = svc.Delete(ctx, nil, created.ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestCategoryMutationAuthorization(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	otherPlace := int64(9)
	cafeAdmin := &auth.Actor{UserID: 3, Role: enums.RoleCafeAdmin, PlaceID: &otherPlace}

	_, err := svc.Create(ctx, cafeAdmin, CreateCategoryInput{Name: "Foreign", PlaceID: 1})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())

	ownPlace := int64(1)
	owner := &auth.Actor{UserID: 4, Role: enums.RoleCafeAdmin, PlaceID: &ownPlace}
	created, err := svc.Create(ctx, owner, CreateCategoryInput{Name: "Own", PlaceID: 1})
	require.NoError(t, err)

	// moving the category to a foreign tenant is rejected too
	_, err = svc.Update(ctx, owner, created.ID, UpdateCategoryInput{Name: "Own", PlaceID: 9})
	require.Error(t, err)

	require.NoError(t, svc.Delete(ctx, &auth.Actor{UserID: 1, Role: enums.RoleSystemAdmin}, created.ID))
}
