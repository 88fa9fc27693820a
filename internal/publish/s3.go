// Package publish uploads generated projects to object storage.
package publish

import (
	"bytes"
	"context"
	"os"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/vango-dev/projgen/internal/config"
	"github.com/vango-dev/projgen/internal/errors"
	"github.com/vango-dev/projgen/internal/templates"
)

// PutObjectAPI is the subset of *s3.Client the publisher needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Publisher stores project files under <prefix>/<name>/<path>.
//
// Example usage:
//
//	client := publish.NewS3Client(cfg.Publish.S3)
//	p := publish.NewS3Publisher(client, cfg.Publish.S3.Bucket, cfg.Publish.S3.Prefix)
//	keys, err := p.Publish(ctx, "liquid-glass", desc.Files)
type S3Publisher struct {
	client PutObjectAPI
	bucket string
	prefix string
	now    func() time.Time
}

// NewS3Publisher creates a publisher for the given bucket and key prefix.
func NewS3Publisher(client PutObjectAPI, bucket, prefix string) *S3Publisher {
	return &S3Publisher{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		now:    time.Now,
	}
}

// Bucket returns the destination bucket.
func (p *S3Publisher) Bucket() string {
	return p.bucket
}

// Key returns the object key for a project file.
func (p *S3Publisher) Key(name, rel string) string {
	if p.prefix == "" {
		return path.Join(name, rel)
	}
	return path.Join(p.prefix, name, rel)
}

// Publish uploads every file in order and returns the keys written.
// It stops at the first failure; objects already uploaded stay in place.
func (p *S3Publisher) Publish(ctx context.Context, name string, files []templates.File) ([]string, error) {
	uploaded := p.now().UTC().Format(time.RFC3339)
	keys := make([]string, 0, len(files))

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return keys, errors.New("E104").Wrap(err)
		}

		key := p.Key(name, f.Path)
		_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(p.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(f.Content),
			ContentType: aws.String(ContentType(f.Path)),
			Metadata: map[string]string{
				"project":     name,
				"upload-time": uploaded,
			},
		})
		if err != nil {
			return keys, errors.New("E140").
				WithPath("s3://" + p.bucket + "/" + key).
				Wrap(err)
		}
		keys = append(keys, key)
	}

	return keys, nil
}

// contentTypes covers every extension the templates emit.
var contentTypes = map[string]string{
	".json": "application/json",
	".html": "text/html; charset=utf-8",
	".ts":   "text/typescript; charset=utf-8",
	".tsx":  "text/tsx; charset=utf-8",
	".css":  "text/css; charset=utf-8",
}

// ContentType returns the MIME type stored with a project file.
func ContentType(rel string) string {
	if ct, ok := contentTypes[path.Ext(rel)]; ok {
		return ct
	}
	return "application/octet-stream"
}

// NewS3Client builds an S3 client from configuration. Static credentials in
// the config take precedence over AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY.
func NewS3Client(cfg config.S3Config) *s3.Client {
	creds := aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
		id, secret := cfg.AccessKeyID, cfg.SecretAccessKey
		token := ""
		if id == "" {
			id = os.Getenv("AWS_ACCESS_KEY_ID")
			secret = os.Getenv("AWS_SECRET_ACCESS_KEY")
			token = os.Getenv("AWS_SESSION_TOKEN")
		}
		if id == "" || secret == "" {
			return aws.Credentials{}, errors.New("E141").
				WithDetail("no S3 credentials configured").
				WithSuggestion("Set publish.s3.accessKeyID/secretAccessKey or AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY")
		}
		return aws.Credentials{
			AccessKeyID:     id,
			SecretAccessKey: secret,
			SessionToken:    token,
			Source:          "projgen",
		}, nil
	})

	awsCfg := aws.Config{
		Region:      cfg.Region,
		Credentials: aws.NewCredentialsCache(creds),
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
}

// FromConfig returns a publisher for the configured bucket, or an E141 error
// when no bucket is set.
func FromConfig(cfg config.S3Config) (*S3Publisher, error) {
	if !cfg.Enabled() {
		return nil, errors.New("E141")
	}
	return NewS3Publisher(NewS3Client(cfg), cfg.Bucket, cfg.Prefix), nil
}
