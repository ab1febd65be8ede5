package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	s3adapter "github.com/lullaby-ai/server/internal/adapter/outbound/s3"
)

// ingestAssets uploads the request's photos to durable storage and returns
// their public URLs. Invalid payloads and failed uploads are skipped; when
// nothing survives, a single placeholder URL is returned so downstream
// stages always receive at least one image reference.
func (p *Pipeline) ingestAssets(ctx context.Context, storyID uuid.UUID, images []string, log *zap.Logger) []string {
	if len(images) > p.config.MaxImages {
		images = images[:p.config.MaxImages]
	}

	uploaded := make([]string, len(images))

	g, gctx := errgroup.WithContext(ctx)
	for i, image := range images {
		g.Go(func() error {
			data, mimeType, err := s3adapter.ParseDataURI(image)
			if err != nil {
				log.Warn("skipping invalid image payload", zap.Int("index", i), zap.Error(err))
				return nil
			}

			key := fmt.Sprintf("stories/%s/images/%d%s", storyID, i+1, extensionForMIME(mimeType))
			url, err := p.media.Upload(gctx, key, data, mimeType)
			if err != nil {
				log.Warn("image upload failed, skipping", zap.Int("index", i), zap.Error(err))
				return nil
			}

			uploaded[i] = url
			return nil
		})
	}
	g.Wait() //nolint:errcheck // workers never return errors, failures are skipped

	urls := make([]string, 0, len(uploaded))
	for _, url := range uploaded {
		if url != "" {
			urls = append(urls, url)
		}
	}

	if len(urls) == 0 {
		urls = []string{p.config.PlaceholderImageURL}
	}
	return urls
}

func extensionForMIME(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}
