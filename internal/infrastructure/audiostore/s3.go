package audiostore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"

	"github.com/janhq/relay-api/internal/config"
	"github.com/janhq/relay-api/internal/domain/relay"
	"github.com/janhq/relay-api/internal/utils/clipid"
)

const s3KeyPrefix = "audio/"

// s3API is the subset of the S3 client the store uses.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// S3Store keeps clips in an S3-compatible bucket.
type S3Store struct {
	bucket string
	client s3API
	log    zerolog.Logger
}

// NewS3Store creates an S3 clip store. Static credentials are used when
// configured, the default AWS chain otherwise.
func NewS3Store(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*S3Store, error) {
	bucket := strings.TrimSpace(cfg.AudioS3Bucket)
	if bucket == "" {
		return nil, errors.New("AUDIO_S3_BUCKET is not set")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AudioS3Region),
	}
	accessKey := strings.TrimSpace(cfg.AudioS3AccessKeyID)
	secretKey := strings.TrimSpace(cfg.AudioS3SecretKey)
	if accessKey != "" && secretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := strings.TrimSpace(cfg.AudioS3Endpoint)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.AudioS3UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	store := newS3Store(client, bucket, log)
	store.log.Info().Str("bucket", bucket).Str("endpoint", endpoint).Msg("s3 audio store initialized")
	return store, nil
}

func newS3Store(client s3API, bucket string, log zerolog.Logger) *S3Store {
	return &S3Store{
		bucket: bucket,
		client: client,
		log:    log.With().Str("component", "audio-store").Str("backend", "s3").Logger(),
	}
}

// Save uploads the clip.
func (s *S3Store) Save(ctx context.Context, clip *relay.AudioClip) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectKey(clip.ID)),
		Body:          bytes.NewReader(clip.Data),
		ContentLength: aws.Int64(int64(len(clip.Data))),
		ContentType:   aws.String(clip.ContentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload clip: %w", err)
	}
	return nil
}

// Get downloads a clip.
func (s *S3Store) Get(ctx context.Context, id string) (*relay.AudioClip, error) {
	if !clipid.IsValid(id) {
		return nil, ErrClipNotFound
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(id)),
	})
	if err != nil {
		var noSuchKey *s3types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, ErrClipNotFound
		}
		return nil, fmt.Errorf("failed to download clip: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read clip body: %w", err)
	}

	clip := &relay.AudioClip{ID: id, Data: data, ContentType: aws.ToString(out.ContentType)}
	if out.LastModified != nil {
		clip.CreatedAt = *out.LastModified
	}
	return clip, nil
}

// DeleteExpired removes clips last modified before the cutoff.
func (s *S3Store) DeleteExpired(ctx context.Context, before time.Time) (int, error) {
	removed := 0
	var token *string
	for {
		page, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(s3KeyPrefix),
			ContinuationToken: token,
		})
		if err != nil {
			return removed, fmt.Errorf("failed to list clips: %w", err)
		}
		for _, obj := range page.Contents {
			if obj.LastModified == nil || !obj.LastModified.Before(before) {
				continue
			}
			if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(s.bucket),
				Key:    obj.Key,
			}); err != nil {
				s.log.Warn().Err(err).Str("key", aws.ToString(obj.Key)).Msg("failed to delete expired clip")
				continue
			}
			removed++
		}
		if !aws.ToBool(page.IsTruncated) {
			return removed, nil
		}
		token = page.NextContinuationToken
	}
}

// Health checks the bucket is reachable.
func (s *S3Store) Health(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	return err
}

func objectKey(id string) string {
	return s3KeyPrefix + id
}
