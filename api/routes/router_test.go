package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	authsvc "github.com/cafemenu/cafemenu-backend/internal/auth"
	"github.com/cafemenu/cafemenu-backend/internal/categories"
	"github.com/cafemenu/cafemenu-backend/internal/cleanup"
	"github.com/cafemenu/cafemenu-backend/internal/menuitems"
	"github.com/cafemenu/cafemenu-backend/internal/places"
	"github.com/cafemenu/cafemenu-backend/internal/uploads"
	"github.com/cafemenu/cafemenu-backend/internal/users"
	pkgAuth "github.com/cafemenu/cafemenu-backend/pkg/auth"
	"github.com/cafemenu/cafemenu-backend/pkg/config"
	"github.com/cafemenu/cafemenu-backend/pkg/db"
	"github.com/cafemenu/cafemenu-backend/pkg/db/models"
	"github.com/cafemenu/cafemenu-backend/pkg/enums"
	"github.com/cafemenu/cafemenu-backend/pkg/logger"
	"github.com/cafemenu/cafemenu-backend/pkg/metrics"
)

type testEnv struct {
	conn    *gorm.DB
	cfg     *config.Config
	handler http.Handler
}

func newTestEnv(t *testing.T, legacyOpen bool) *testEnv {
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

	cfg := &config.Config{}
	cfg.App.Env = "dev"
	cfg.JWT = config.JWTConfig{Secret: "router-test-secret", Issuer: "cafemenu-test", ExpirationMinutes: 60}
	cfg.Password = config.PasswordConfig{
		ArgonMemoryKB: 8 * 1024, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32,
	}
	cfg.Uploads = config.UploadsConfig{
		Dir: t.TempDir(), PublicPath: "/uploads", MaxUploadMB: 1, MaxBatchFiles: 3,
	}
	cfg.FeatureFlags.LegacyOpenMutations = legacyOpen

	logg := logger.New(logger.Options{ServiceName: "router-test", Level: zerolog.ErrorLevel})
	dbClient := db.FromConn(conn)

	placeRepo := places.NewRepository(conn)
	categoryRepo := categories.NewRepository(conn)
	itemRepo := menuitems.NewRepository(conn)
	userRepo := users.NewRepository(conn)

	placeService, err := places.NewService(placeRepo, dbClient)
	require.NoError(t, err)
	categoryService, err := categories.NewService(categoryRepo, dbClient)
	require.NoError(t, err)
	itemService, err := menuitems.NewService(itemRepo, dbClient, categoryRepo, placeRepo)
	require.NoError(t, err)
	userService, err := users.NewService(userRepo, dbClient, placeRepo, cfg.Password)
	require.NoError(t, err)
	authService, err := authsvc.NewService(userRepo, cfg.JWT)
	require.NoError(t, err)
	uploadService, err := uploads.NewService(cfg.Uploads)
	require.NoError(t, err)
	cleanupService, err := cleanup.NewService(itemRepo, categoryRepo, userRepo, dbClient, uploadService)
	require.NoError(t, err)

	handler := NewRouter(cfg, logg, dbClient, nil, metrics.NewHTTPMetrics(), userRepo, Services{
		Auth:       authService,
		Places:     placeService,
		Categories: categoryService,
		MenuItems:  itemService,
		Users:      userService,
		Uploads:    uploadService,
		Cleanup:    cleanupService,
	})

	return &testEnv{conn: conn, cfg: cfg, handler: handler}
}

func (e *testEnv) seedPlace(t *testing.T, name string) int64 {
	t.Helper()

	place := &models.Place{Name: name, IsActive: true, CreatedAt: time.Now().UTC()}
	require.NoError(t, e.conn.Create(place).Error)
	return place.ID
}

func (e *testEnv) seedAdmin(t *testing.T, role enums.UserRole, placeID *int64) (int64, string) {
	t.Helper()

	user := &models.User{
		Username:     fmt.Sprintf("admin-%d", time.Now().UnixNano()),
		PasswordHash: "unused",
		Role:         role,
		PlaceID:      placeID,
	}
	require.NoError(t, e.conn.Create(user).Error)

	token, err := pkgAuth.MintAccessToken(e.cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: user.ID, Role: role, PlaceID: placeID,
	})
	require.NoError(t, err)
	return user.ID, token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var envelope struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Data
}

func TestHealthLive(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dev", rec.Header().Get("X-CafeMenu-Env"))
}

func TestCategoryCreateThenGetScenario(t *testing.T) {
	env := newTestEnv(t, false)
	_, token := env.seedAdmin(t, enums.RoleSystemAdmin, nil)

	created := env.do(t, http.MethodPost, "/categories", token, map[string]any{
		"name": "Coffee", "icon": "x", "description": "d", "placeId": 1,
	})
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())

	data := decodeData(t, created)
	id := int64(data["id"].(float64))

	got := env.do(t, http.MethodGet, fmt.Sprintf("/categories/%d?placeId=1", id), "", nil)
	require.Equal(t, http.StatusOK, got.Code)

	fetched := decodeData(t, got)
	assert.Equal(t, "Coffee", fetched["name"])
	assert.EqualValues(t, 0, fetched["itemCount"])
}

func TestCatalogReadsSetCacheControl(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.do(t, http.MethodGet, "/categories", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Cache-Control"), "max-age=60")
}

func TestMutationRequiresActor(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.do(t, http.MethodPost, "/categories", "", map[string]any{
		"name": "Coffee", "placeId": 1,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLegacyOpenMutationsSkipAuth(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.do(t, http.MethodPost, "/categories", "", map[string]any{
		"name": "Coffee", "placeId": 1,
	})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestLoginFailureIsHTTP200(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.do(t, http.MethodPost, "/auth/login", "", map[string]any{
		"username": "nobody", "password": "wrong",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.False(t, payload.Success)
	assert.NotEmpty(t, payload.Message)
}

func TestUsersEndpointsRequireSystemAdmin(t *testing.T) {
	env := newTestEnv(t, false)

	anonymous := env.do(t, http.MethodGet, "/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, anonymous.Code)

	placeID := env.seedPlace(t, "Cafe Uno")
	_, cafeToken := env.seedAdmin(t, enums.RoleCafeAdmin, &placeID)
	forbidden := env.do(t, http.MethodGet, "/users", cafeToken, nil)
	assert.Equal(t, http.StatusForbidden, forbidden.Code)

	_, sysToken := env.seedAdmin(t, enums.RoleSystemAdmin, nil)
	allowed := env.do(t, http.MethodGet, "/users", sysToken, nil)
	assert.Equal(t, http.StatusOK, allowed.Code)
}

func TestMenuItemWithMissingCategoryIsBadRequest(t *testing.T) {
	env := newTestEnv(t, false)
	_, token := env.seedAdmin(t, enums.RoleSystemAdmin, nil)

	rec := env.do(t, http.MethodPost, "/menuitems", token, map[string]any{
		"name": "Espresso", "price": 4.5, "categoryId": 999, "placeId": 1,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestUploadThenStaticServe(t *testing.T) {
	env := newTestEnv(t, false)
	_, token := env.seedAdmin(t, enums.RoleSystemAdmin, nil)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreatePart(map[string][]string{
		"Content-Disposition": {`form-data; name="file"; filename="menu.png"`},
		"Content-Type":        {"image/png"},
	})
	require.NoError(t, err)
	_, err = part.Write([]byte("fake-png-bytes"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload/image", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var envelope struct {
		Data string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.True(t, strings.HasPrefix(envelope.Data, "/uploads/"))

	served := env.do(t, http.MethodGet, envelope.Data, "", nil)
	assert.Equal(t, http.StatusOK, served.Code)
	assert.Equal(t, "fake-png-bytes", served.Body.String())
}

func TestCleanupRequiresSystemAdmin(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.do(t, http.MethodPost, "/cleanup/reset-database", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	_, token := env.seedAdmin(t, enums.RoleSystemAdmin, nil)
	allowed := env.do(t, http.MethodGet, "/cleanup/database-status", token, nil)
	assert.Equal(t, http.StatusOK, allowed.Code, allowed.Body.String())
}

func TestMetricsEndpointExposed(t *testing.T) {
	env := newTestEnv(t, false)

	env.do(t, http.MethodGet, "/health/live", "", nil)
	rec := env.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}
