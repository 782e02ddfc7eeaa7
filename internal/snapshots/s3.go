// Package snapshots archives fetched card definitions to an S3-compatible
// bucket before the engine overwrites them, so a bad save can be undone by
// hand.
package snapshots

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/annokeeper/internal/carddoc"
	"github.com/dmitrijs2005/annokeeper/internal/common"
	"github.com/google/uuid"
)

// Archiver stores a copy of a card definition and returns its object key.
type Archiver interface {
	Archive(ctx context.Context, cardID int64, def carddoc.Definition) (string, error)
}

type Settings struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	// PathStyle is needed by most self-hosted S3 implementations (MinIO).
	PathStyle bool
}

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Archiver struct {
	client objectPutter
	bucket string
	now    func() time.Time
	newID  func() string
}

// NewS3Archiver builds an S3 client from s. Static credentials are used when
// an access key is set; otherwise the default AWS credential chain applies.
func NewS3Archiver(ctx context.Context, s Settings) (*S3Archiver, error) {
	if s.Bucket == "" {
		return nil, fmt.Errorf("%w: snapshot bucket is empty", common.ErrValidation)
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(s.Region)}
	if s.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.AccessKey, s.SecretKey, "")))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if s.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.Endpoint)
		}
		o.UsePathStyle = s.PathStyle
	})

	return newArchiver(client, s.Bucket), nil
}

func newArchiver(client objectPutter, bucket string) *S3Archiver {
	return &S3Archiver{client: client, bucket: bucket, now: time.Now, newID: uuid.NewString}
}

// Key returns the object key for a snapshot taken at t.
func Key(cardID int64, t time.Time, id string) string {
	t = t.UTC()
	return fmt.Sprintf("cards/%d/%04d/%02d/%02d/%s.json", cardID, t.Year(), int(t.Month()), t.Day(), id)
}

func (a *S3Archiver) Archive(ctx context.Context, cardID int64, def carddoc.Definition) (string, error) {
	body, err := json.Marshal(def.Raw)
	if err != nil {
		return "", fmt.Errorf("encode snapshot of card %d: %w", cardID, err)
	}

	key := Key(cardID, a.now(), a.newID())
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("put snapshot %s: %w", key, err)
	}
	return key, nil
}
