// Package storage is the object storage gateway: it presigns direct
// upload/download URLs and performs delete and existence checks against an
// S3-compatible bucket. It holds no business rules.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// MetaUploadedAt is the user metadata key stamped on presigned uploads.
const MetaUploadedAt = "uploaded-at"

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
		return c.DeleteObject(ctx, in)
	}
	headObject = func(c *s3.Client, ctx context.Context, in *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
		return c.HeadObject(ctx, in)
	}
)

// ErrObjectNotFound is returned by Stat for a missing key.
var ErrObjectNotFound = errors.New("object not found")

// Settings describe how to reach the bucket.
type Settings struct {
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Region          string
	BaseEndpoint    string
	UsePathStyle    bool
}

// PresignedRequest is a URL plus the headers the caller must send with it.
type PresignedRequest struct {
	URL     string
	Method  string
	Headers map[string]string
}

// ObjectInfo is what HeadObject tells about a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

type S3Gateway struct {
	bucket  string
	client  *s3.Client
	presign *s3.PresignClient
	now     func() time.Time
}

// NewS3Gateway builds the SDK clients from static credentials.
func NewS3Gateway(ctx context.Context, s Settings) (*S3Gateway, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.AccessKeyID,
			s.SecretAccessKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.BaseEndpoint)
		}
		o.UsePathStyle = s.UsePathStyle
	})

	return &S3Gateway{
		bucket:  s.Bucket,
		client:  client,
		presign: newS3PresignClient(client),
		now:     time.Now,
	}, nil
}

func (g *S3Gateway) Bucket() string { return g.bucket }

// PresignUpload returns a PUT URL valid for ttl. The returned headers carry
// the upload timestamp metadata and the Content-Type the object is stored
// with; the client has to send them unchanged.
func (g *S3Gateway) PresignUpload(ctx context.Context, key, contentType string, ttl time.Duration) (*PresignedRequest, error) {
	req, err := presignPutObject(g.presign, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(g.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		Metadata:    map[string]string{MetaUploadedAt: g.now().UTC().Format(time.RFC3339)},
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return nil, fmt.Errorf("presign put: %w", err)
	}
	out := toPresigned(req)
	// The v4 signer leaves Content-Type unsigned.
	out.Headers["Content-Type"] = contentType
	return out, nil
}

// PresignDownload returns a GET URL valid for ttl.
func (g *S3Gateway) PresignDownload(ctx context.Context, key string, ttl time.Duration) (*PresignedRequest, error) {
	req, err := presignGetObject(g.presign, ctx, &s3.GetObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return nil, fmt.Errorf("presign get: %w", err)
	}
	return toPresigned(req), nil
}

func (g *S3Gateway) Delete(ctx context.Context, key string) error {
	_, err := deleteObject(g.client, ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

// Exists reports whether key is present. A missing object is not an error.
func (g *S3Gateway) Exists(ctx context.Context, key string) (bool, error) {
	_, err := g.Stat(ctx, key)
	if errors.Is(err, ErrObjectNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (g *S3Gateway) Stat(ctx context.Context, key string) (*ObjectInfo, error) {
	out, err := headObject(g.client, ctx, &s3.HeadObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("head object %s: %w", key, err)
	}

	return &ObjectInfo{
		Key:          key,
		Size:         aws.ToInt64(out.ContentLength),
		ContentType:  aws.ToString(out.ContentType),
		LastModified: aws.ToTime(out.LastModified),
		Metadata:     out.Metadata,
	}, nil
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}

func toPresigned(req *v4.PresignedHTTPRequest) *PresignedRequest {
	headers := make(map[string]string, len(req.SignedHeader))
	for name, values := range req.SignedHeader {
		if http.CanonicalHeaderKey(name) == "Host" || len(values) == 0 {
			continue
		}
		headers[http.CanonicalHeaderKey(name)] = values[0]
	}
	return &PresignedRequest{URL: req.URL, Method: req.Method, Headers: headers}
}
