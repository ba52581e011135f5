package cleanup

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/cafemenu/cafemenu-backend/internal/categories"
	"github.com/cafemenu/cafemenu-backend/internal/menuitems"
	"github.com/cafemenu/cafemenu-backend/internal/uploads"
	"github.com/cafemenu/cafemenu-backend/internal/users"
	"github.com/cafemenu/cafemenu-backend/pkg/config"
	"github.com/cafemenu/cafemenu-backend/pkg/db"
	"github.com/cafemenu/cafemenu-backend/pkg/db/models"
	"github.com/cafemenu/cafemenu-backend/pkg/enums"
)

type fixture struct {
	conn    *gorm.DB
	svc     Service
	files   uploads.Service
	itemsDB *menuitems.Repository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_fk=1"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := conn.AutoMigrate(&models.Place{}, &models.Category{}, &models.MenuItem{}, &models.User{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	t.Cleanup(func() {
		conn.Exec("DELETE FROM menu_items")
		conn.Exec("DELETE FROM categories")
		conn.Exec("DELETE FROM users")
		conn.Exec("DELETE FROM places")
	})

	files, err := uploads.NewService(config.UploadsConfig{
		Dir:           t.TempDir(),
		PublicPath:    "/uploads",
		MaxUploadMB:   1,
		MaxBatchFiles: 3,
	})
	require.NoError(t, err)

	itemRepo := menuitems.NewRepository(conn)
	svc, err := NewService(itemRepo, categories.NewRepository(conn), users.NewRepository(conn), db.FromConn(conn), files)
	require.NoError(t, err)

	return &fixture{conn: conn, svc: svc, files: files, itemsDB: itemRepo}
}

func (f *fixture) seedItem(t *testing.T, placeID int64, image, photos string) *models.MenuItem {
	t.Helper()

	item := &models.MenuItem{
		Name:       "Espresso",
		Price:      decimal.RequireFromString("4.50"),
		Image:      image,
		CategoryID: 1,
		PlaceID:    placeID,
		Photos:     photos,
	}
	require.NoError(t, f.conn.Create(item).Error)
	return item
}

func (f *fixture) seedCategory(t *testing.T, placeID int64) *models.Category {
	t.Helper()

	category := &models.Category{Name: "Drinks", PlaceID: placeID}
	require.NoError(t, f.conn.Create(category).Error)
	return category
}

func dataURI(payload string) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(payload))
}

func ptr(v int64) *int64 { return &v }

func TestResetDatabaseClearsCatalogAndUploads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.seedCategory(t, 1)
	f.seedCategory(t, 2)
	f.seedItem(t, 1, "menu.png", "")
	f.seedItem(t, 2, "menu.png", "")

	_, err := f.files.SaveRaw(ctx, "image", "png", []byte("x"))
	require.NoError(t, err)

	require.NoError(t, f.conn.Create(&models.User{
		Username: "keepme", PasswordHash: "h", Role: enums.RoleSystemAdmin,
	}).Error)

	result, err := f.svc.ResetDatabase(ctx, nil)
	require.NoError(t, err)

	assert.EqualValues(t, 2, result.MenuItems)
	assert.EqualValues(t, 2, result.Categories)
	assert.Equal(t, 1, result.UploadedFiles)
	assert.False(t, result.PlaceScoped)

	var userCount int64
	require.NoError(t, f.conn.Model(&models.User{}).Count(&userCount).Error)
	assert.EqualValues(t, 1, userCount)
}

func TestResetDatabasePlaceScoped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.seedCategory(t, 1)
	f.seedCategory(t, 2)
	f.seedItem(t, 1, "menu.png", "")
	f.seedItem(t, 2, "menu.png", "")

	result, err := f.svc.ResetDatabase(ctx, ptr(1))
	require.NoError(t, err)

	assert.EqualValues(t, 1, result.MenuItems)
	assert.EqualValues(t, 1, result.Categories)
	assert.True(t, result.PlaceScoped)
	require.NotNil(t, result.PlaceID)
	assert.EqualValues(t, 1, *result.PlaceID)

	remaining, err := f.itemsDB.Count(ctx, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, remaining)
}

func TestDatabaseStatusCounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	place := &models.Place{Name: "Cafe", IsActive: true}
	require.NoError(t, f.conn.Create(place).Error)

	f.seedCategory(t, place.ID)
	f.seedItem(t, place.ID, "menu.png", "")
	f.seedItem(t, place.ID+99, "menu.png", "")

	require.NoError(t, f.conn.Create(&models.User{
		Username: "root", PasswordHash: "h", Role: enums.RoleSystemAdmin,
	}).Error)
	require.NoError(t, f.conn.Create(&models.User{
		Username: "owner", PasswordHash: "h", Role: enums.RoleCafeAdmin, PlaceID: &place.ID,
	}).Error)

	status, err := f.svc.DatabaseStatus(ctx, &place.ID)
	require.NoError(t, err)

	assert.EqualValues(t, 1, status.MenuItems)
	assert.EqualValues(t, 1, status.Categories)
	assert.EqualValues(t, 1, status.SystemAdmins)
	assert.EqualValues(t, 1, status.CafeAdmins)
	assert.Equal(t, 0, status.UploadedFiles)
	assert.NotEmpty(t, status.DatabaseSize)
	assert.True(t, status.PlaceScoped)
}

func TestMigrateBase64Images(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inline := f.seedItem(t, 1, dataURI("main-image"), dataURI("photo-one")+","+"https://cdn/keep.png")
	untouched := f.seedItem(t, 1, "https://cdn/menu.png", "")

	result, err := f.svc.MigrateBase64Images(ctx, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, result.MigratedCount)
	assert.Equal(t, 2, result.TotalItems)
	assert.Empty(t, result.Errors)

	var migrated models.MenuItem
	require.NoError(t, f.conn.First(&migrated, inline.ID).Error)
	assert.True(t, strings.HasPrefix(migrated.Image, "/uploads/image_"))

	photos := menuitems.StringToPhotos(migrated.Photos)
	require.Len(t, photos, 2)
	assert.True(t, strings.HasPrefix(photos[0], "/uploads/photo_"))
	assert.Equal(t, "https://cdn/keep.png", photos[1])

	var kept models.MenuItem
	require.NoError(t, f.conn.First(&kept, untouched.ID).Error)
	assert.Equal(t, "https://cdn/menu.png", kept.Image)
}

func TestMigrateBase64ImagesWritesFiles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.seedItem(t, 1, dataURI("main-image"), "")

	result, err := f.svc.MigrateBase64Images(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 1, result.MigratedCount)

	count, err := f.files.CountFiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var migrated models.MenuItem
	require.NoError(t, f.conn.Where("image LIKE ?", "/uploads/%").First(&migrated).Error)
}

func TestMigrateBase64ImagesReportsBadPayloads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	broken := f.seedItem(t, 1, "data:image/png;base64,@@not-base64@@", "")

	result, err := f.svc.MigrateBase64Images(ctx, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, result.MigratedCount)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "item")

	var stored models.MenuItem
	require.NoError(t, f.conn.First(&stored, broken.ID).Error)
	assert.Equal(t, broken.Image, stored.Image)
}

func TestAnalyzeImages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.seedItem(t, 1, dataURI(strings.Repeat("x", 400)), dataURI("photo"))
	f.seedItem(t, 1, "https://cdn/menu.png", "")
	f.seedItem(t, 1, "", "")

	analysis, err := f.svc.AnalyzeImages(ctx, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, analysis.TotalItems)
	assert.Equal(t, 1, analysis.Base64Images)
	assert.Equal(t, 1, analysis.URLImages)
	assert.Equal(t, 1, analysis.EmptyImages)
	assert.Greater(t, analysis.EstimatedTotalSizeBytes, int64(0))
	assert.NotEmpty(t, analysis.EstimatedTotalSize)

	require.Len(t, analysis.ItemsWithBase64, 1)
	report := analysis.ItemsWithBase64[0]
	assert.True(t, report.HasBase64Image)
	assert.True(t, report.HasBase64Photos)
	assert.Greater(t, report.ImageSize, int64(0))
	assert.Greater(t, report.PhotosSize, int64(0))
}

func TestAnalyzeImagesPlaceScoped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.seedItem(t, 1, dataURI("one"), "")
	f.seedItem(t, 2, dataURI("two"), "")

	analysis, err := f.svc.AnalyzeImages(ctx, ptr(2))
	require.NoError(t, err)

	assert.Equal(t, 1, analysis.TotalItems)
	assert.Equal(t, 1, analysis.Base64Images)
	assert.True(t, analysis.PlaceScoped)
}

func TestFormatBytesTrimsZeros(t *testing.T) {
	assert.Equal(t, "0 B", formatBytes(0))
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KB", formatBytes(1536))
	assert.Equal(t, "2 MB", formatBytes(2*1024*1024))
}
