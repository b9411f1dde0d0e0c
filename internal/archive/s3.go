// Package archive stores a JSON copy of every composed agreement in an S3
// compatible bucket.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"rentflow/internal/models"
)

type Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Prefix    string
}

type S3Archive struct {
	client s3iface.S3API
	bucket string
	prefix string
}

// NewS3Archive builds a client from cfg. Static credentials are used when
// both keys are set, otherwise the default AWS chain applies.
func NewS3Archive(cfg Config) (*S3Archive, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("archive: bucket is required")
	}
	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("archive: new session: %w", err)
	}
	return New(s3.New(sess), cfg.Bucket, cfg.Prefix), nil
}

func New(client s3iface.S3API, bucket, prefix string) *S3Archive {
	if prefix == "" {
		prefix = "agreements"
	}
	return &S3Archive{client: client, bucket: bucket, prefix: prefix}
}

// Key returns the object key of agreement a.
func (s *S3Archive) Key(a models.Agreement) string {
	return path.Join(s.prefix, a.OfferID, a.ID+".json")
}

func (s *S3Archive) Archive(ctx context.Context, a models.Agreement) error {
	body, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("archive: encode agreement %s: %w", a.ID, err)
	}
	_, err = s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.Key(a)),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("archive: upload agreement %s: %w", a.ID, err)
	}
	return nil
}
