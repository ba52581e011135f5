package cleanup

// ResetResult reports what a reset removed. Admin accounts and places are
// never touched.
type ResetResult struct {
	MenuItems     int64  `json:"menuItems"`
	Categories    int64  `json:"categories"`
	UploadedFiles int    `json:"uploadedFiles"`
	PlaceScoped   bool   `json:"placeScoped"`
	PlaceID       *int64 `json:"placeId"`
}

// StatusResult is a snapshot of row counts and stored upload volume.
type StatusResult struct {
	MenuItems     int64  `json:"menuItems"`
	Categories    int64  `json:"categories"`
	SystemAdmins  int64  `json:"systemAdmins"`
	CafeAdmins    int64  `json:"cafeAdmins"`
	UploadedFiles int    `json:"uploadedFiles"`
	DatabaseSize  string `json:"databaseSize"`
	PlaceScoped   bool   `json:"placeScoped"`
	PlaceID       *int64 `json:"placeId"`
}

// MigrationResult reports how many inline images were rewritten to files.
type MigrationResult struct {
	MigratedCount int      `json:"migratedCount"`
	TotalItems    int      `json:"totalItems"`
	Errors        []string `json:"errors"`
	PlaceScoped   bool     `json:"placeScoped"`
	PlaceID       *int64   `json:"placeId"`
}

// ItemImageReport describes one menu item still carrying inline images.
type ItemImageReport struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	HasBase64Image  bool   `json:"hasBase64Image"`
	HasBase64Photos bool   `json:"hasBase64Photos"`
	ImageSize       int64  `json:"imageSize"`
	PhotosSize      int64  `json:"photosSize"`
}

// ImageAnalysis classifies menu item images by storage form.
type ImageAnalysis struct {
	TotalItems              int               `json:"totalItems"`
	Base64Images            int               `json:"base64Images"`
	URLImages               int               `json:"urlImages"`
	EmptyImages             int               `json:"emptyImages"`
	EstimatedTotalSize      string            `json:"estimatedTotalSize"`
	EstimatedTotalSizeBytes int64             `json:"estimatedTotalSizeBytes"`
	ItemsWithBase64         []ItemImageReport `json:"itemsWithBase64"`
	PlaceScoped             bool              `json:"placeScoped"`
	PlaceID                 *int64            `json:"placeId"`
}
