package domain

const (
	// MaxImageSize is the maximum allowed size for uploaded listing photos.
	MaxImageSize = 20 * 1024 * 1024 // 20MB

	// MaxAvatarSize is the maximum allowed size for profile avatars.
	MaxAvatarSize = 5 * 1024 * 1024 // 5MB

	// ThumbnailMaxWidth is the maximum width for generated card thumbnails.
	ThumbnailMaxWidth = 800

	// ThumbnailMaxHeight is the maximum height for generated card thumbnails.
	ThumbnailMaxHeight = 600

	// ThumbnailJPEGQuality is the JPEG quality for thumbnail generation (0-100).
	ThumbnailJPEGQuality = 85
)

// validImageContentTypes lists the accepted upload formats.
var validImageContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// IsValidImageContentType checks if the content type is supported.
func IsValidImageContentType(contentType string) bool {
	return validImageContentTypes[contentType]
}

// ValidateImageSize checks an upload against the given byte limit.
func ValidateImageSize(size, limit int64) error {
	const op = "domain.ValidateImageSize"

	if size <= 0 {
		return Invalid(op, "Uploaded file is empty")
	}
	if size > limit {
		return Errorf(ETOOLARGE, op, "Image exceeds the maximum size of %dMB", limit/(1024*1024))
	}
	return nil
}
