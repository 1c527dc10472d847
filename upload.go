package main

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// s3Config holds S3 connection settings. Empty credentials fall back to the
// default AWS chain; an endpoint selects an S3-compatible store such as MinIO.
type s3Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// s3Location is a parsed s3://bucket/key destination.
type s3Location struct {
	Bucket string
	Key    string
}

func (l s3Location) String() string {
	return "s3://" + l.Bucket + "/" + l.Key
}

// parseS3URL parses s3://bucket/key. A key ending in "/" gets defaultName appended.
func parseS3URL(raw, defaultName string) (s3Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return s3Location{}, fmt.Errorf("invalid upload destination %q: %w", raw, err)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return s3Location{}, fmt.Errorf("invalid upload destination %q: want s3://bucket/key", raw)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if key == "" || strings.HasSuffix(key, "/") {
		key += defaultName
	}
	return s3Location{Bucket: u.Host, Key: key}, nil
}

func newS3Client(ctx context.Context, cfg s3Config) (*s3.Client, error) {
	var loadOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// uploadBundle puts body at loc.
func uploadBundle(ctx context.Context, cfg s3Config, loc s3Location, body []byte, contentType string) error {
	client, err := newS3Client(ctx, cfg)
	if err != nil {
		return err
	}
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(loc.Bucket),
		Key:           aws.String(loc.Key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", loc, err)
	}
	logger.Info("uploaded bundle", zap.String("dest", loc.String()), zap.Int("bytes", len(body)))
	return nil
}

// contentTypeFor maps an output format to the uploaded object's content type.
func contentTypeFor(format string) string {
	switch format {
	case formatJSON:
		return "application/json"
	case formatMarkdown:
		return "text/markdown; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

// extensionFor is the file extension of an output format.
func extensionFor(format string) string {
	switch format {
	case formatJSON:
		return ".json"
	case formatMarkdown:
		return ".md"
	}
	return ".txt"
}
