package store

import (
	"context"

	"github.com/opsx/collab/shared/logger"
	"github.com/opsx/collab/shared/wire"
)

// Layered writes through to a durable primary and a fast cache. Reads are
// served from the cache only when it can fill the whole request; a short
// cache may be missing messages older than its TTL.
type Layered struct {
	Primary History
	Cache   History
}

// Append implements History. Cache failures are logged, not returned.
func (l *Layered) Append(ctx context.Context, msg wire.ChatMessage) error {
	if err := l.Primary.Append(ctx, msg); err != nil {
		return err
	}
	if err := l.Cache.Append(ctx, msg); err != nil {
		logger.Warnf("History cache append failed (room %s): %v", msg.ProjectID, err)
	}
	return nil
}

// Recent implements History.
func (l *Layered) Recent(ctx context.Context, projectID string, limit int) ([]wire.ChatMessage, error) {
	cached, err := l.Cache.Recent(ctx, projectID, limit)
	if err != nil {
		logger.Warnf("History cache read failed (room %s): %v", projectID, err)
	}
	if err == nil && len(cached) >= ClampLimit(limit) {
		return cached, nil
	}

	msgs, err := l.Primary.Recent(ctx, projectID, limit)
	if err != nil {
		return nil, err
	}
	for _, msg := range msgs {
		if err := l.Cache.Append(ctx, msg); err != nil {
			logger.Debugf("History cache warm failed (room %s): %v", projectID, err)
			break
		}
	}
	return msgs, nil
}
