package menuitems

import "strings"

// photosSeparator joins the ordered photo list into the single persisted
// column. A plain URL containing a literal comma corrupts the list on the
// way back out; the storage format predates this service and is kept for
// compatibility rather than fixed.
const photosSeparator = ","

// PhotosToString serializes the ordered photo list for storage.
func PhotosToString(photos []string) string {
	return strings.Join(photos, photosSeparator)
}

// StringToPhotos restores the ordered photo list from storage. An inline
// data: URI carries its own comma between the ";base64" header and the
// payload, so a fragment that is such a header gets the following fragment
// stitched back on. The base64 alphabet has no comma, so one stitch
// reassembles the URI.
func StringToPhotos(raw string) []string {
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, photosSeparator)
	photos := make([]string, 0, len(parts))
	for i := 0; i < len(parts); i++ {
		part := parts[i]
		if strings.HasPrefix(part, "data:") && strings.HasSuffix(part, ";base64") && i+1 < len(parts) {
			i++
			part += photosSeparator + parts[i]
		}
		photos = append(photos, part)
	}
	return photos
}
