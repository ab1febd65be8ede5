package s3

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/lullaby-ai/server/internal/port/outbound"
)

// ErrNotImage indicates a data URI does not carry an image payload.
var ErrNotImage = errors.New("data URI is not an image")

// MediaStorageAdapter implements MediaStoragePort using R2/S3.
type MediaStorageAdapter struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

// NewMediaStorageAdapter creates a new media storage adapter. publicBaseURL
// is the CDN or bucket base under which uploaded keys are reachable.
func NewMediaStorageAdapter(client *s3.Client, bucket, publicBaseURL string) *MediaStorageAdapter {
	return &MediaStorageAdapter{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}
}

// Upload stores the object and returns its public URL.
func (a *MediaStorageAdapter) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	key = strings.TrimPrefix(key, "/")

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}

	return a.publicBaseURL + "/" + key, nil
}

// Delete removes every object under prefix.
func (a *MediaStorageAdapter) Delete(ctx context.Context, prefix string) error {
	paginator := s3.NewListObjectsV2Paginator(a.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(a.bucket),
		Prefix: aws.String(strings.TrimPrefix(prefix, "/")),
	})

	var objectsToDelete []types.ObjectIdentifier
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("list objects: %w", err)
		}
		for _, obj := range page.Contents {
			objectsToDelete = append(objectsToDelete, types.ObjectIdentifier{Key: obj.Key})
		}
	}

	// Delete in batches of 1000
	for i := 0; i < len(objectsToDelete); i += 1000 {
		end := i + 1000
		if end > len(objectsToDelete) {
			end = len(objectsToDelete)
		}

		_, err := a.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(a.bucket),
			Delete: &types.Delete{
				Objects: objectsToDelete[i:end],
				Quiet:   aws.Bool(true),
			},
		})
		if err != nil {
			return fmt.Errorf("delete objects: %w", err)
		}
	}

	return nil
}

// ParseDataURI decodes a base64 image data URI ("data:image/png;base64,...")
// into raw bytes and its MIME type.
func ParseDataURI(uri string) ([]byte, string, error) {
	const prefix = "data:"
	if !strings.HasPrefix(uri, prefix) {
		return nil, "", errors.New("not a data URI")
	}

	rest := uri[len(prefix):]
	sep := strings.Index(rest, ",")
	if sep < 0 {
		return nil, "", errors.New("malformed data URI")
	}

	meta := rest[:sep]
	payload := rest[sep+1:]

	mimeType := meta
	if i := strings.Index(meta, ";"); i >= 0 {
		mimeType = meta[:i]
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, "", ErrNotImage
	}

	if !strings.Contains(meta, ";base64") {
		return nil, "", errors.New("data URI is not base64 encoded")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decode data URI: %w", err)
	}

	return data, mimeType, nil
}

// Compile-time check
var _ outbound.MediaStoragePort = (*MediaStorageAdapter)(nil)
