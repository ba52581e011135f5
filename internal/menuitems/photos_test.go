package menuitems

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhotosRoundTrip(t *testing.T) {
	cases := [][]string{
		{},
		{"https://cdn.example.com/a.jpg"},
		{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg", "/uploads/c.png"},
	}
	for _, photos := range cases {
		assert.Equal(t, photos, StringToPhotos(PhotosToString(photos)))
	}
}

func TestPhotosEmptyString(t *testing.T) {
	assert.Empty(t, StringToPhotos(""))
	assert.Equal(t, "", PhotosToString(nil))
}

func TestPhotosInlineDataURISurvivesRoundTrip(t *testing.T) {
	photos := []string{
		"data:image/png;base64,aGVsbG8=",
		"https://cdn.example.com/b.jpg",
		"data:image/jpeg;base64,d29ybGQ=",
	}
	assert.Equal(t, photos, StringToPhotos(PhotosToString(photos)))
}

func TestPhotosCommaCollisionCorruptsList(t *testing.T) {
	// known storage-format limitation: a URL containing a comma splits
	photos := []string{"https://cdn.example.com/a,b.jpg"}
	restored := StringToPhotos(PhotosToString(photos))
	assert.NotEqual(t, photos, restored)
	assert.Len(t, restored, 2)
}
