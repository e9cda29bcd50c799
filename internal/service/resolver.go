// internal/service/resolver.go
package service

import (
	"context"
	"log"
	"time"
)

// LinkResolver converts a TikTok share URL into a direct media URL. The real
// extraction lives in an external service; the proxy only consumes this
// contract, so implementations are swappable without touching the streaming
// path.
type LinkResolver interface {
	Resolve(ctx context.Context, sourceURL string) (string, error)
}

// DirectLinkCache is the slice of the repository the caching resolver needs.
type DirectLinkCache interface {
	GetDirectLink(sourceURL string) (string, error)
	SetDirectLink(sourceURL, directURL string, expiration time.Duration) error
}

// CachingResolver memoizes resolved links so repeated requests for the same
// share URL skip the extractor round trip. Cache errors degrade to a miss.
type CachingResolver struct {
	inner LinkResolver
	cache DirectLinkCache
	ttl   time.Duration
}

func NewCachingResolver(inner LinkResolver, cache DirectLinkCache, ttl time.Duration) *CachingResolver {
	return &CachingResolver{
		inner: inner,
		cache: cache,
		ttl:   ttl,
	}
}

func (r *CachingResolver) Resolve(ctx context.Context, sourceURL string) (string, error) {
	directURL, err := r.cache.GetDirectLink(sourceURL)
	if err == nil && directURL != "" {
		return directURL, nil
	}

	directURL, err = r.inner.Resolve(ctx, sourceURL)
	if err != nil {
		return "", err
	}

	if err := r.cache.SetDirectLink(sourceURL, directURL, r.ttl); err != nil {
		log.Printf("⚠️ Warning: Could not cache direct link: %v", err)
	}

	return directURL, nil
}
