// Package archive keeps a copy of every accepted import upload.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Archiver stores raw upload bytes and returns the object key.
type Archiver interface {
	Archive(ctx context.Context, fileName string, data []byte) (string, error)
}

// PutObjectAPI is the slice of the S3 client the archiver needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Archiver struct {
	client PutObjectAPI
	bucket string
	prefix string

	now   func() time.Time
	newID func() string
}

// NewS3 builds an archiver from the default AWS credential chain.
func NewS3(ctx context.Context, bucket, prefix string) (*S3Archiver, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	logrus.WithFields(logrus.Fields{"bucket": bucket, "prefix": prefix}).Info("upload archive enabled")
	return NewS3WithClient(s3.NewFromConfig(awsCfg), bucket, prefix), nil
}

func NewS3WithClient(client PutObjectAPI, bucket, prefix string) *S3Archiver {
	return &S3Archiver{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Archive uploads data under <prefix>/YYYY/MM/DD/<uuid>_<name>.
func (a *S3Archiver) Archive(ctx context.Context, fileName string, data []byte) (string, error) {
	key := a.key(fileName)

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(fileName)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			"original_name": fileName,
		},
	})
	if err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", a.bucket, key, err)
	}
	return key, nil
}

func (a *S3Archiver) key(fileName string) string {
	now := a.now().UTC()
	name := fmt.Sprintf("%s_%s", a.newID(), sanitizeName(fileName))
	dir := fmt.Sprintf("%d/%02d/%02d", now.Year(), now.Month(), now.Day())
	if a.prefix == "" {
		return path.Join(dir, name)
	}
	return path.Join(a.prefix, dir, name)
}

// Nop is used when no bucket is configured.
type Nop struct{}

func (Nop) Archive(context.Context, string, []byte) (string, error) { return "", nil }

func sanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	ext := strings.ToLower(filepath.Ext(name))
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return '_'
	}, name)
	if len(name) > 40 {
		name = name[:40]
	}
	if name == "" {
		name = "file"
	}
	return name + ext
}
