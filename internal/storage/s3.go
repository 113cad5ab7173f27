package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fathima-sithara/chat-backend/internal/domain"
)

var contentTypes = map[domain.MediaKind]string{
	domain.KindImage: "image/jpeg",
	domain.KindVoice: "audio/mpeg",
	domain.KindVideo: "video/mp4",
}

var extensions = map[domain.MediaKind]string{
	domain.KindImage: ".jpg",
	domain.KindVoice: ".mp3",
	domain.KindVideo: ".mp4",
}

// S3Store is the media attachment boundary: it turns raw bytes into a stable
// public URL plus the object key used for later deletion.
type S3Store struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	region   string
	log      *zap.SugaredLogger
}

func NewS3Store(ctx context.Context, region, bucket string, log *zap.SugaredLogger) (*S3Store, error) {
	cfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(region))
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(cfg)
	return &S3Store{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		region:   region,
		log:      log,
	}, nil
}

// Upload stores the payload and returns its reference. Images additionally
// get a 320px thumbnail object next to the original; thumbnail failures do
// not fail the upload.
func (s *S3Store) Upload(ctx context.Context, kind domain.MediaKind, ownerID string, data []byte) (domain.MediaRef, error) {
	key := fmt.Sprintf("%s/%s/%s%s", kind, ownerID, uuid.NewString(), extensions[kind])

	if err := s.put(ctx, key, contentTypes[kind], data); err != nil {
		return domain.MediaRef{}, fmt.Errorf("%w: %v", domain.ErrUpload, err)
	}

	if kind == domain.KindImage {
		if thumb, err := thumbnail(data); err == nil {
			if err := s.put(ctx, thumbKey(key), "image/jpeg", thumb); err != nil {
				s.log.Warnw("thumbnail upload failed", "key", key, "err", err)
			}
		}
	}

	return domain.MediaRef{Kind: kind, URL: s.publicURL(key), Key: key}, nil
}

// Delete removes the object for key; for images the thumbnail goes too.
func (s *S3Store) Delete(ctx context.Context, kind domain.MediaKind, key string) error {
	if kind == domain.KindImage {
		if err := s.remove(ctx, thumbKey(key)); err != nil {
			s.log.Warnw("thumbnail delete failed", "key", key, "err", err)
		}
	}
	if err := s.remove(ctx, key); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMediaDelete, err)
	}
	return nil
}

func (s *S3Store) put(ctx context.Context, key, contentType string, data []byte) error {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	return err
}

func (s *S3Store) remove(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

func (s *S3Store) publicURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, url.PathEscape(key))
}

func thumbKey(key string) string { return key + "_thumb.jpg" }

func thumbnail(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	thumb := imaging.Resize(img, 320, 0, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
