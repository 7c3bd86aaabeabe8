// Package service contains the business logic for the marketplace.
//
// This file implements photo uploads for listings and profile avatars.
package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/google/uuid"
	"github.com/wanderstay/wanderstay/internal/domain"
	"github.com/wanderstay/wanderstay/internal/metrics"
	"github.com/wanderstay/wanderstay/internal/repository"
	"github.com/wanderstay/wanderstay/internal/storage"
)

// PhotoService defines the interface for photo upload operations.
type PhotoService interface {
	// UploadPropertyImage stores a listing photo and records it. Only the
	// property's host may upload. When makePrimary is set, any existing
	// primary flag is cleared first so at most one image stays flagged.
	UploadPropertyImage(ctx context.Context, file multipart.File, header *multipart.FileHeader, propertyID, hostID uuid.UUID, makePrimary bool) (*domain.PropertyImage, error)

	// UploadAvatar stores a profile photo and updates the user's avatar
	// URL. Returns the new URL.
	UploadAvatar(ctx context.Context, file multipart.File, header *multipart.FileHeader, userID uuid.UUID) (string, error)
}

type photoService struct {
	queries   *repository.Queries
	storage   storage.Storage
	processor ThumbnailProcessor
	logger    *slog.Logger
}

// NewPhotoService creates a new PhotoService.
func NewPhotoService(queries *repository.Queries, store storage.Storage, processor ThumbnailProcessor, logger *slog.Logger) PhotoService {
	return &photoService{
		queries:   queries,
		storage:   store,
		processor: processor,
		logger:    logger,
	}
}

func (s *photoService) UploadPropertyImage(ctx context.Context, file multipart.File, header *multipart.FileHeader, propertyID, hostID uuid.UUID, makePrimary bool) (*domain.PropertyImage, error) {
	const op = "PhotoService.UploadPropertyImage"

	property, err := s.queries.GetPropertyByID(ctx, propertyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "property", propertyID.String())
		}
		return nil, domain.Internal(err, op, "Failed to upload image")
	}
	if property.HostID != hostID {
		return nil, domain.Forbidden(op, "Only the host can add photos to a listing")
	}

	fileData, contentType, err := readImageUpload(op, file, header, domain.MaxImageSize)
	if err != nil {
		return nil, err
	}

	// The stored image_url is the display rendition: an 800x600-fit JPEG.
	// The original stays in storage alongside it at full resolution.
	thumbnailBytes, width, height, err := s.processor.GenerateThumbnail(
		bytes.NewReader(fileData), domain.ThumbnailMaxWidth, domain.ThumbnailMaxHeight)
	if err != nil {
		return nil, domain.Invalid(op, "Uploaded file is not a decodable image")
	}

	originalKey := storage.PropertyImageKey(propertyID, header.Filename)
	thumbnailKey := storage.PropertyThumbnailKey(propertyID)

	if err := s.storage.Put(ctx, originalKey, bytes.NewReader(fileData), storage.PutOptions{
		ContentType: contentType,
		MaxSize:     domain.MaxImageSize,
		Public:      true,
	}); err != nil {
		return nil, domain.Internal(err, op, "Failed to store image")
	}
	if err := s.storage.Put(ctx, thumbnailKey, bytes.NewReader(thumbnailBytes), storage.PutOptions{
		ContentType: "image/jpeg",
		Public:      true,
	}); err != nil {
		_ = s.storage.Delete(ctx, originalKey)
		return nil, domain.Internal(err, op, "Failed to store image")
	}

	imageURL, err := s.storage.URL(ctx, thumbnailKey, 0)
	if err != nil {
		_ = s.storage.Delete(ctx, originalKey)
		_ = s.storage.Delete(ctx, thumbnailKey)
		return nil, domain.Internal(err, op, "Failed to store image")
	}

	if makePrimary {
		if err := s.queries.ClearPrimaryImage(ctx, propertyID); err != nil {
			return nil, domain.Internal(err, op, "Failed to save image record")
		}
	}
	repoImage, err := s.queries.CreatePropertyImage(ctx, repository.CreatePropertyImageParams{
		PropertyID: propertyID,
		ImageUrl:   imageURL,
		IsPrimary:  makePrimary,
	})
	if err != nil {
		_ = s.storage.Delete(ctx, originalKey)
		_ = s.storage.Delete(ctx, thumbnailKey)
		return nil, domain.Internal(err, op, "Failed to save image record")
	}

	img := repoImageToDomain(repoImage)
	metrics.ImagesUploaded.WithLabelValues("property").Inc()
	s.logger.Info("property image uploaded", "property_id", propertyID, "image_id", img.ID,
		"original_width", width, "original_height", height, "primary", makePrimary)
	return &img, nil
}

func (s *photoService) UploadAvatar(ctx context.Context, file multipart.File, header *multipart.FileHeader, userID uuid.UUID) (string, error) {
	const op = "PhotoService.UploadAvatar"

	if userID == uuid.Nil {
		return "", domain.Unauthorized(op, "Please sign in to update your profile")
	}

	user, err := s.queries.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.NotFound(op, "user", userID.String())
		}
		return "", domain.Internal(err, op, "Failed to upload avatar")
	}

	fileData, contentType, err := readImageUpload(op, file, header, domain.MaxAvatarSize)
	if err != nil {
		return "", err
	}

	key := storage.AvatarKey(userID, header.Filename)
	if err := s.storage.Put(ctx, key, bytes.NewReader(fileData), storage.PutOptions{
		ContentType: contentType,
		MaxSize:     domain.MaxAvatarSize,
		Public:      true,
	}); err != nil {
		return "", domain.Internal(err, op, "Failed to store avatar")
	}

	avatarURL, err := s.storage.URL(ctx, key, 0)
	if err != nil {
		_ = s.storage.Delete(ctx, key)
		return "", domain.Internal(err, op, "Failed to store avatar")
	}

	err = s.queries.UpdateUserProfile(ctx, repository.UpdateUserProfileParams{
		ID:        userID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		AvatarUrl: toNullString(avatarURL),
	})
	if err != nil {
		_ = s.storage.Delete(ctx, key)
		return "", domain.Internal(err, op, "Failed to update profile")
	}

	metrics.ImagesUploaded.WithLabelValues("avatar").Inc()
	s.logger.Info("avatar uploaded", "user_id", userID)
	return avatarURL, nil
}

// readImageUpload validates an uploaded file against the size limit and the
// accepted image formats, then reads it fully into memory.
func readImageUpload(op string, file multipart.File, header *multipart.FileHeader, maxSize int64) ([]byte, string, error) {
	if err := domain.ValidateImageSize(header.Size, maxSize); err != nil {
		return nil, "", err
	}

	// Sniff the real content type from the first 512 bytes; the declared
	// multipart header is client-controlled.
	headerBytes := make([]byte, 512)
	n, err := file.Read(headerBytes)
	if err != nil && err != io.EOF {
		return nil, "", domain.Internal(err, op, "Failed to read upload")
	}
	contentType := http.DetectContentType(headerBytes[:n])
	if !domain.IsValidImageContentType(contentType) {
		return nil, "", domain.Invalid(op, fmt.Sprintf("Unsupported image type: %s. Only JPEG and PNG are supported.", contentType))
	}

	if seeker, ok := file.(io.Seeker); ok {
		if _, err := seeker.Seek(0, 0); err != nil {
			return nil, "", domain.Internal(err, op, "Failed to read upload")
		}
	}

	fileData, err := io.ReadAll(file)
	if err != nil {
		return nil, "", domain.Internal(err, op, "Failed to read upload")
	}
	return fileData, contentType, nil
}
