// Package publish uploads a static build of the homepage to an S3 compatible
// bucket (AWS S3, MinIO, R2).
package publish

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config selects the target bucket. Credentials fall back to the default
// AWS chain (environment, shared config, instance role) when empty.
type Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	Prefix          string
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string
}

// Publisher writes build files to a bucket.
type Publisher struct {
	client *s3.Client
	bucket string
	prefix string
}

// Result summarises one publish run.
type Result struct {
	Files int
	Bytes int64
	Keys  []string
}

// New builds a Publisher. optFns are applied to the S3 client options after
// Config, which lets callers swap the HTTP client.
func New(ctx context.Context, cfg Config, optFns ...func(*s3.Options)) (*Publisher, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("publish: bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("publish: load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, append([]func(*s3.Options){func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}}, optFns...)...)

	return &Publisher{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

// Key maps a path relative to the build directory to its object key.
func (p *Publisher) Key(rel string) string {
	rel = filepath.ToSlash(rel)
	if p.prefix == "" {
		return rel
	}
	return path.Join(p.prefix, rel)
}

// Publish uploads every regular file under dir. The first failing upload
// stops the run.
func (p *Publisher) Publish(ctx context.Context, dir string) (Result, error) {
	var res Result
	err := filepath.WalkDir(dir, func(fp string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, fp)
		if err != nil {
			return err
		}
		n, err := p.upload(ctx, fp, p.Key(rel))
		if err != nil {
			return fmt.Errorf("upload %s: %w", rel, err)
		}
		res.Files++
		res.Bytes += n
		res.Keys = append(res.Keys, p.Key(rel))
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("publish: %w", err)
	}
	return res, nil
}

func (p *Publisher) upload(ctx context.Context, fp, key string) (int64, error) {
	f, err := os.Open(fp)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return 0, err
	}

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(ContentType(key)),
		CacheControl:  aws.String(CacheControl(key)),
	})
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// ContentType guesses the MIME type from the key's extension.
func ContentType(key string) string {
	switch ext := strings.ToLower(path.Ext(key)); ext {
	case ".md":
		return "text/markdown; charset=utf-8"
	case ".js":
		return "text/javascript; charset=utf-8"
	case "":
		return "application/octet-stream"
	default:
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
		return "application/octet-stream"
	}
}

// CacheControl keeps pages and data revalidating while assets cache for a day.
func CacheControl(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".html", ".json", ".js", ".xml", ".txt", ".md":
		return "no-cache"
	default:
		return "public, max-age=86400"
	}
}
