package auth

import (
	"testing"
	"time"

	"github.com/cafemenu/cafemenu-backend/pkg/config"
	"github.com/cafemenu/cafemenu-backend/pkg/enums"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "cafemenu-api",
		ExpirationMinutes: 60,
	}
}

func TestMintAndParseRoundTrip(t *testing.T) {
	placeID := int64(7)
	token, err := MintAccessToken(testJWTConfig(), time.Now(), AccessTokenPayload{
		UserID:  12,
		Role:    enums.RoleCafeAdmin,
		PlaceID: &placeID,
	})
	require.NoError(t, err)

	claims, err := ParseAccessToken(testJWTConfig(), token)
	require.NoError(t, err)
	assert.EqualValues(t, 12, claims.UserID)
	assert.Equal(t, enums.RoleCafeAdmin, claims.Role)
	require.NotNil(t, claims.PlaceID)
	assert.EqualValues(t, 7, *claims.PlaceID)
	assert.NotEmpty(t, claims.ID)
}

func TestMintRejectsInvalidRole(t *testing.T) {
	_, err := MintAccessToken(testJWTConfig(), time.Now(), AccessTokenPayload{
		UserID: 1,
		Role:   enums.UserRole("Intruder"),
	})
	assert.Error(t, err)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now().Add(-2*time.Hour), AccessTokenPayload{
		UserID: 1,
		Role:   enums.RoleSystemAdmin,
	})
	require.NoError(t, err)

	_, err = ParseAccessToken(cfg, token)
	assert.Error(t, err)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := MintAccessToken(testJWTConfig(), time.Now(), AccessTokenPayload{
		UserID: 1,
		Role:   enums.RoleSystemAdmin,
	})
	require.NoError(t, err)

	other := testJWTConfig()
	other.Secret = "different"
	_, err = ParseAccessToken(other, token)
	assert.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := ParseAccessToken(testJWTConfig(), "not-a-token")
	assert.Error(t, err)
}

func TestActorCanManagePlace(t *testing.T) {
	place := int64(3)
	other := int64(9)

	var legacy *Actor
	assert.True(t, legacy.CanManagePlace(place))

	system := &Actor{UserID: 1, Role: enums.RoleSystemAdmin}
	assert.True(t, system.CanManagePlace(place))
	assert.True(t, system.IsSystemAdmin())

	cafe := &Actor{UserID: 2, Role: enums.RoleCafeAdmin, PlaceID: &place}
	assert.True(t, cafe.CanManagePlace(place))
	assert.False(t, cafe.CanManagePlace(other))
	assert.False(t, cafe.IsSystemAdmin())

	orphan := &Actor{UserID: 3, Role: enums.RoleCafeAdmin}
	assert.False(t, orphan.CanManagePlace(place))
}
