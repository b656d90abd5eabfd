package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/dukerupert/twoof/internal/apperror"
	"github.com/dukerupert/twoof/internal/blob"
	"github.com/dukerupert/twoof/internal/model"
	"github.com/dukerupert/twoof/internal/store"
)

// MaxPhotoSize is the per-file upload ceiling.
const MaxPhotoSize = 10 << 20

// photoExt maps each accepted content type to its stored file extension.
var photoExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

type pendingPhoto struct {
	photo model.Photo
	data  []byte
}

// readUploads validates and buffers a whole batch. Nothing is written unless
// every file passes.
func readUploads(uploads []model.PhotoUpload) ([]pendingPhoto, error) {
	if len(uploads) == 0 {
		return nil, apperror.ValidationFailed("files", "at least one file is required")
	}

	pending := make([]pendingPhoto, 0, len(uploads))
	for _, u := range uploads {
		mediaType, _, err := mime.ParseMediaType(u.ContentType)
		if err != nil {
			mediaType = strings.ToLower(strings.TrimSpace(u.ContentType))
		}
		ext, ok := photoExt[mediaType]
		if !ok {
			return nil, apperror.ValidationFailed("files",
				fmt.Sprintf("file type %s not allowed, use JPEG, PNG, WebP or GIF", u.ContentType))
		}

		data, err := io.ReadAll(io.LimitReader(u.Body, MaxPhotoSize+1))
		if err != nil {
			return nil, fmt.Errorf("read upload: %w", err)
		}
		if len(data) > MaxPhotoSize {
			return nil, apperror.TooLarge("file too large (max 10MB)")
		}

		name := path.Base(strings.ReplaceAll(u.Filename, `\`, "/"))
		if name == "" || name == "." || name == "/" {
			name = "photo" + ext
		}
		pending = append(pending, pendingPhoto{
			photo: model.Photo{
				ID:        uuid.NewString(),
				FilePath:  "photos/" + uuid.NewString() + ext,
				Filename:  name,
				MimeType:  mediaType,
				SizeBytes: int64(len(data)),
			},
			data: data,
		})
	}
	return pending, nil
}

// UploadPhotos stores a batch of photos on a memory. The batch is
// all-or-nothing: files are written first, rows inserted in one transaction,
// and written files removed again if the transaction fails.
func (s *MemoryService) UploadPhotos(ctx context.Context, userID, memoryID string, uploads []model.PhotoUpload) ([]model.Photo, error) {
	h, err := ResolveHousehold(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.load(ctx, s.db, h.ID, memoryID); err != nil {
		return nil, err
	}

	pending, err := readUploads(uploads)
	if err != nil {
		return nil, err
	}

	var written []string
	cleanup := func() {
		for _, key := range written {
			s.removeBlob(context.WithoutCancel(ctx), key)
		}
	}
	for _, p := range pending {
		if err := s.blobs.Put(ctx, p.photo.FilePath, bytes.NewReader(p.data), p.photo.SizeBytes, p.photo.MimeType); err != nil {
			cleanup()
			return nil, fmt.Errorf("store photo: %w", err)
		}
		written = append(written, p.photo.FilePath)
	}

	photos := make([]model.Photo, 0, len(pending))
	err = store.WithTx(ctx, s.db, func(ctx context.Context, tx store.DBTX) error {
		// the memory may have gone away since the first check
		if _, err := s.load(ctx, tx, h.ID, memoryID); err != nil {
			return err
		}
		ps := store.NewPhotoStore(tx)
		last, err := ps.MaxSortOrder(ctx, memoryID)
		if err != nil {
			return err
		}
		uploadedAt := s.now().UTC()
		for i, p := range pending {
			photo := p.photo
			photo.MemoryID = memoryID
			photo.SortOrder = last + 1 + i
			photo.UploadedAt = uploadedAt
			if err := ps.Create(ctx, &photo); err != nil {
				return err
			}
			photos = append(photos, photo)
		}
		return nil
	})
	if err != nil {
		cleanup()
		return nil, translate("upload photos", err)
	}
	return photos, nil
}

// OpenPhoto returns the photo's metadata and its bytes. The caller closes
// the reader.
func (s *MemoryService) OpenPhoto(ctx context.Context, userID, photoID string) (*model.Photo, io.ReadCloser, error) {
	p, err := s.photoForUser(ctx, userID, photoID)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.blobs.Open(ctx, p.FilePath)
	if errors.Is(err, blob.ErrNotExist) {
		return nil, nil, apperror.NotFound("photo file")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open photo: %w", err)
	}
	return p, rc, nil
}

func (s *MemoryService) DeletePhoto(ctx context.Context, userID, photoID string) (*model.Photo, error) {
	p, err := s.photoForUser(ctx, userID, photoID)
	if err != nil {
		return nil, err
	}
	s.removeBlob(ctx, p.FilePath)

	err = store.WithTx(ctx, s.db, func(ctx context.Context, tx store.DBTX) error {
		return store.NewPhotoStore(tx).Delete(ctx, p.ID)
	})
	if err != nil {
		return nil, translate("delete photo", err)
	}
	return p, nil
}

// photoForUser returns the photo only when it belongs to a memory of the
// caller's household.
func (s *MemoryService) photoForUser(ctx context.Context, userID, photoID string) (*model.Photo, error) {
	h, err := ResolveHousehold(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	p, err := store.NewPhotoStore(s.db).GetForHousehold(ctx, h.ID, photoID)
	if err != nil {
		return nil, translate("get photo", err)
	}
	if p == nil {
		return nil, apperror.NotFound("photo")
	}
	return p, nil
}
