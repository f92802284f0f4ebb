package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/oggyb/glidefade/internal/app"
	svcErr "github.com/oggyb/glidefade/internal/errors"
	"github.com/oggyb/glidefade/internal/metrics"
)

// ThumbnailSize bounds both thumbnail dimensions, aspect ratio kept.
const ThumbnailSize = 320

// Store persists an object and returns where clients can fetch it.
type Store interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
}

// Result is where an upload ended up. ThumbnailURL is set for images only.
type Result struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

var thumbnailTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
}

// Service uploads user media to object storage.
type Service struct {
	appCtx *app.AppContext
	store  Store
	now    func() time.Time
}

func NewService(appCtx *app.AppContext, store Store) *Service {
	return &Service{appCtx: appCtx, store: store, now: time.Now}
}

// Upload stores body as uploads/<userID>/<unix-millis>-<filename>.
// Images also get a JPEG thumbnail under thumbnails/; a thumbnail that
// cannot be produced is logged and left out.
func (s *Service) Upload(ctx context.Context, userID, filename string, body io.Reader, size int64, contentType string) (*Result, error) {
	if userID == "" {
		return nil, svcErr.InvalidArgument("user_id is required")
	}
	if filename == "" || size <= 0 {
		return nil, svcErr.InvalidArgument("file is required")
	}
	if limit := s.appCtx.Config.S3.MaxUploadBytes; limit > 0 && size > limit {
		return nil, &svcErr.Error{Status: http.StatusRequestEntityTooLarge, Message: "file too large"}
	}

	var data []byte
	if _, ok := thumbnailTypes[contentType]; ok {
		var err error
		if data, err = io.ReadAll(io.LimitReader(body, size)); err != nil {
			return nil, svcErr.InvalidArgument("could not read file")
		}
		body = bytes.NewReader(data)
	}

	key := ObjectKey(userID, filename, s.now())
	url, err := s.store.Put(ctx, key, body, size, contentType)
	if err != nil {
		s.appCtx.Logger.Error("upload failed", "user", userID, "key", key, "err", err)
		return nil, svcErr.Internal("upload failed", err)
	}
	metrics.UploadBytes.Observe(float64(size))
	s.appCtx.Logger.Info("media uploaded", "user", userID, "key", key, "bytes", size)

	res := &Result{URL: url}
	if data != nil {
		thumbURL, err := s.putThumbnail(ctx, key, data)
		if err != nil {
			s.appCtx.Logger.Warn("thumbnail skipped", "key", key, "err", err)
		}
		res.ThumbnailURL = thumbURL
	}
	return res, nil
}

func (s *Service) putThumbnail(ctx context.Context, key string, data []byte) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	thumb := imaging.Fit(img, ThumbnailSize, ThumbnailSize, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		return "", fmt.Errorf("encode: %w", err)
	}
	return s.store.Put(ctx, ThumbnailKey(key), &buf, int64(buf.Len()), "image/jpeg")
}

// ObjectKey builds the storage key for an upload.
func ObjectKey(userID, filename string, at time.Time) string {
	name := unsafeChars.ReplaceAllString(path.Base(filename), "_")
	return fmt.Sprintf("uploads/%s/%d-%s", unsafeChars.ReplaceAllString(userID, "_"), at.UnixMilli(), name)
}

// ThumbnailKey maps an upload key to its thumbnail key.
func ThumbnailKey(key string) string {
	key = strings.TrimSuffix(key, path.Ext(key)) + ".jpg"
	return "thumbnails/" + strings.TrimPrefix(key, "uploads/")
}
