package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Config locates the bucket objects are uploaded to.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // custom endpoint (MinIO, localstack); implies path-style URLs
	PublicURL string // base URL for object links, overrides the derived one
}

// putObjectAPI is the part of the S3 client the store needs.
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store uploads objects with a public-read ACL.
type S3Store struct {
	client putObjectAPI
	conf   S3Config
}

// NewS3Store builds a client from the default AWS credential chain.
func NewS3Store(ctx context.Context, conf S3Config) (*S3Store, error) {
	if conf.Bucket == "" {
		return nil, ErrNotConfigured
	}

	var opts []func(*awsconfig.LoadOptions) error
	if conf.Region != "" {
		opts = append(opts, awsconfig.WithRegion(conf.Region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS configuration: %w", err)
	}
	if conf.Region == "" {
		conf.Region = cfg.Region
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if conf.Endpoint != "" {
			o.BaseEndpoint = aws.String(conf.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Store(client, conf), nil
}

func newS3Store(client putObjectAPI, conf S3Config) *S3Store {
	return &S3Store{client: client, conf: conf}
}

// Put uploads body under key and returns the object URL.
func (s *S3Store) Put(ctx context.Context, key string, body io.ReadSeeker, contentType string) (string, error) {
	if s == nil || s.conf.Bucket == "" {
		return "", ErrNotConfigured
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.conf.Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s to bucket %s: %w", key, s.conf.Bucket, err)
	}
	return s.objectURL(key)
}

func (s *S3Store) objectURL(key string) (string, error) {
	switch {
	case s.conf.PublicURL != "":
		return url.JoinPath(s.conf.PublicURL, key)
	case s.conf.Endpoint != "":
		return url.JoinPath(s.conf.Endpoint, s.conf.Bucket, key)
	case s.conf.Region != "":
		return url.JoinPath(fmt.Sprintf("https://%s.s3.%s.amazonaws.com", s.conf.Bucket, s.conf.Region), key)
	default:
		return url.JoinPath(fmt.Sprintf("https://%s.s3.amazonaws.com", s.conf.Bucket), key)
	}
}
