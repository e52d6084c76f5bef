package refdata

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Provider caches loaded bundles process-wide.
//
// The cache key includes the modification time of every source workbook, so
// editing any of them makes the next Bundle call reload from disk.
type Provider struct {
	cache  *cache.Cache
	logger *zap.Logger
}

// NewProvider creates a Provider whose entries expire after ttl.
func NewProvider(ttl time.Duration, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		cache:  cache.New(ttl, 2*ttl),
		logger: logger,
	}
}

// Bundle returns the cached bundle for src, loading it when the workbooks
// changed or the entry expired.
func (p *Provider) Bundle(src Sources) (*Bundle, error) {
	key, err := fingerprint(src)
	if err != nil {
		return nil, err
	}

	if cached, ok := p.cache.Get(key); ok {
		p.logger.Debug("Reference data cache hit", zap.String("key", key))
		return cached.(*Bundle), nil
	}

	bundle, err := Load(src, p.logger)
	if err != nil {
		return nil, err
	}

	p.cache.SetDefault(key, bundle)
	return bundle, nil
}

// Invalidate drops every cached bundle.
func (p *Provider) Invalidate() {
	p.cache.Flush()
}

// fingerprint builds a cache key from paths and modification times.
func fingerprint(src Sources) (string, error) {
	parts := make([]string, 0, 3)
	for _, path := range []string{src.DataFile, src.ProductFile, src.CustomerFile} {
		info, err := os.Stat(path)
		if err != nil {
			return "", fmt.Errorf("failed to stat reference file: %w", err)
		}
		parts = append(parts, fmt.Sprintf("%s@%d", path, info.ModTime().UnixNano()))
	}
	return strings.Join(parts, "|"), nil
}
