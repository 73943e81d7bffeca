package cache

import "context"

type ReportCacheInterface interface {
	Get(ctx context.Context, key string, dst any) bool
	Set(ctx context.Context, key string, value any)
	Invalidate(ctx context.Context)
}

var _ ReportCacheInterface = (*ReportCache)(nil)
