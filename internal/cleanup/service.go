package cleanup

import (
	"context"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/cafemenu/cafemenu-backend/internal/categories"
	"github.com/cafemenu/cafemenu-backend/internal/menuitems"
	"github.com/cafemenu/cafemenu-backend/internal/users"
	"github.com/cafemenu/cafemenu-backend/pkg/db"
	"github.com/cafemenu/cafemenu-backend/pkg/db/models"
	"github.com/cafemenu/cafemenu-backend/pkg/enums"
	pkgerrors "github.com/cafemenu/cafemenu-backend/pkg/errors"
)

const dataImagePrefix = "data:image/"

var dataImagePattern = regexp.MustCompile(`^data:image/(\w+);base64,(.+)$`)

// fileStore is the slice of the uploads service the maintenance operations
// need.
type fileStore interface {
	SaveRaw(ctx context.Context, prefix, extension string, data []byte) (string, error)
	CountFiles(ctx context.Context) (int, error)
	RemoveAll(ctx context.Context) (int, error)
}

// Service bundles the maintenance operations: catalog reset, status
// snapshot, and the inline-image migration tooling.
type Service interface {
	ResetDatabase(ctx context.Context, placeID *int64) (*ResetResult, error)
	DatabaseStatus(ctx context.Context, placeID *int64) (*StatusResult, error)
	MigrateBase64Images(ctx context.Context, placeID *int64) (*MigrationResult, error)
	AnalyzeImages(ctx context.Context, placeID *int64) (*ImageAnalysis, error)
}

type service struct {
	items      *menuitems.Repository
	categories *categories.Repository
	users      *users.Repository
	dbClient   *db.Client
	files      fileStore
}

// NewService constructs a maintenance service instance.
func NewService(
	items *menuitems.Repository,
	cats *categories.Repository,
	userRepo *users.Repository,
	dbClient *db.Client,
	files fileStore,
) (Service, error) {
	if items == nil {
		return nil, fmt.Errorf("menu item repository required")
	}
	if cats == nil {
		return nil, fmt.Errorf("category repository required")
	}
	if userRepo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if files == nil {
		return nil, fmt.Errorf("file store required")
	}
	return &service{
		items:      items,
		categories: cats,
		users:      userRepo,
		dbClient:   dbClient,
		files:      files,
	}, nil
}

// ResetDatabase deletes catalog rows, optionally scoped to one place, in a
// single transaction, then clears the uploads directory best-effort. File
// deletion failures do not fail the reset.
func (s *service) ResetDatabase(ctx context.Context, placeID *int64) (*ResetResult, error) {
	result := &ResetResult{PlaceScoped: placeID != nil, PlaceID: placeID}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		items, err := s.items.WithTx(tx).DeleteAll(ctx, placeID)
		if err != nil {
			return err
		}
		cats, err := s.categories.WithTx(tx).DeleteAll(ctx, placeID)
		if err != nil {
			return err
		}
		result.MenuItems = items
		result.Categories = cats
		return nil
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resetting catalog")
	}

	// Uploaded files are not linked to places, so the file sweep is never
	// place-scoped.
	removed, err := s.files.RemoveAll(ctx)
	if err == nil {
		result.UploadedFiles = removed
	}

	return result, nil
}

func (s *service) DatabaseStatus(ctx context.Context, placeID *int64) (*StatusResult, error) {
	itemCount, err := s.items.Count(ctx, placeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "counting menu items")
	}
	categoryCount, err := s.categories.Count(ctx, placeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "counting categories")
	}
	systemAdmins, err := s.users.CountByRole(ctx, enums.RoleSystemAdmin, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "counting system admins")
	}
	cafeAdmins, err := s.users.CountByRole(ctx, enums.RoleCafeAdmin, placeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "counting cafe admins")
	}

	fileCount, err := s.files.CountFiles(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "counting uploads")
	}

	items, err := s.items.List(ctx, nil, placeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing menu items")
	}

	return &StatusResult{
		MenuItems:     itemCount,
		Categories:    categoryCount,
		SystemAdmins:  systemAdmins,
		CafeAdmins:    cafeAdmins,
		UploadedFiles: fileCount,
		DatabaseSize:  formatBytes(estimateItemsSize(items)),
		PlaceScoped:   placeID != nil,
		PlaceID:       placeID,
	}, nil
}

// MigrateBase64Images rewrites data: URIs stored in menu item images into
// uploaded files and stores the file URLs instead. Items that fail keep
// their original values; the failures come back in the result.
func (s *service) MigrateBase64Images(ctx context.Context, placeID *int64) (*MigrationResult, error) {
	items, err := s.items.List(ctx, nil, placeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing menu items")
	}

	result := &MigrationResult{
		TotalItems:  len(items),
		Errors:      []string{},
		PlaceScoped: placeID != nil,
		PlaceID:     placeID,
	}

	var failures error
	for i := range items {
		migrated, err := s.migrateItem(ctx, &items[i])
		result.MigratedCount += migrated
		if err != nil {
			failures = multierr.Append(failures, fmt.Errorf("item %d: %w", items[i].ID, err))
		}
	}

	for _, err := range multierr.Errors(failures) {
		result.Errors = append(result.Errors, err.Error())
	}
	return result, nil
}

// migrateItem converts the item's inline images and persists the changed
// columns. It returns how many images were rewritten.
func (s *service) migrateItem(ctx context.Context, item *models.MenuItem) (int, error) {
	fields := map[string]any{}
	migrated := 0

	if strings.HasPrefix(item.Image, dataImagePrefix) {
		url, err := s.convertInlineImage(ctx, item.Image, "image")
		if err != nil {
			return 0, fmt.Errorf("converting image: %w", err)
		}
		fields["image"] = url
		migrated++
	}

	photos := menuitems.StringToPhotos(item.Photos)
	photosChanged := false
	var convertErr error
	for i, photo := range photos {
		if !strings.HasPrefix(photo, dataImagePrefix) {
			continue
		}
		url, err := s.convertInlineImage(ctx, photo, "photo")
		if err != nil {
			convertErr = multierr.Append(convertErr, fmt.Errorf("converting photo %d: %w", i, err))
			continue
		}
		photos[i] = url
		photosChanged = true
		migrated++
	}
	if photosChanged {
		fields["photos"] = menuitems.PhotosToString(photos)
	}

	if len(fields) > 0 {
		if _, err := s.items.UpdateFields(ctx, item.ID, fields); err != nil {
			return 0, fmt.Errorf("saving item: %w", err)
		}
	}
	return migrated, convertErr
}

func (s *service) convertInlineImage(ctx context.Context, dataURI, prefix string) (string, error) {
	match := dataImagePattern.FindStringSubmatch(dataURI)
	if match == nil {
		return "", fmt.Errorf("malformed data uri")
	}
	decoded, err := base64.StdEncoding.DecodeString(match[2])
	if err != nil {
		return "", fmt.Errorf("decoding base64: %w", err)
	}
	return s.files.SaveRaw(ctx, prefix, match[1], decoded)
}

func (s *service) AnalyzeImages(ctx context.Context, placeID *int64) (*ImageAnalysis, error) {
	items, err := s.items.List(ctx, nil, placeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing menu items")
	}

	analysis := &ImageAnalysis{
		TotalItems:      len(items),
		ItemsWithBase64: []ItemImageReport{},
		PlaceScoped:     placeID != nil,
		PlaceID:         placeID,
	}

	for i := range items {
		item := &items[i]
		report := ItemImageReport{ID: item.ID, Name: item.Name}

		switch {
		case item.Image == "":
			analysis.EmptyImages++
		case strings.HasPrefix(item.Image, dataImagePrefix):
			analysis.Base64Images++
			report.HasBase64Image = true
			report.ImageSize = estimateBase64Size(item.Image)
			analysis.EstimatedTotalSizeBytes += report.ImageSize
		default:
			analysis.URLImages++
		}

		for _, photo := range menuitems.StringToPhotos(item.Photos) {
			if !strings.HasPrefix(photo, dataImagePrefix) {
				continue
			}
			report.HasBase64Photos = true
			size := estimateBase64Size(photo)
			report.PhotosSize += size
			analysis.EstimatedTotalSizeBytes += size
		}

		if report.HasBase64Image || report.HasBase64Photos {
			analysis.ItemsWithBase64 = append(analysis.ItemsWithBase64, report)
		}
	}

	analysis.EstimatedTotalSize = formatBytes(analysis.EstimatedTotalSizeBytes)
	return analysis, nil
}

// estimateBase64Size approximates the decoded byte size of a data: URI;
// base64 text carries roughly 3 payload bytes per 4 characters.
func estimateBase64Size(value string) int64 {
	if value == "" {
		return 0
	}
	length := len(value)
	if strings.HasPrefix(value, "data:") {
		if comma := strings.IndexByte(value, ','); comma > 0 {
			length = len(value) - comma - 1
		}
	}
	return int64(float64(length) * 0.75)
}

// estimateItemsSize is a rough payload-size figure for the status report,
// dominated by inline images where they still exist.
func estimateItemsSize(items []models.MenuItem) int64 {
	var total int64
	for i := range items {
		item := &items[i]
		if item.Image != "" {
			total += estimateBase64Size(item.Image)
		}
		total += int64(len(item.Photos))
		total += int64(len(item.Description) * 2)
	}
	return total
}

func formatBytes(bytes int64) string {
	units := []string{"B", "KB", "MB", "GB"}
	size := float64(bytes)
	order := 0
	for size >= 1024 && order < len(units)-1 {
		order++
		size /= 1024
	}
	text := strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", size), "0"), ".")
	return text + " " + units[order]
}
