package settings

import "context"

type Repository interface {
	// Get returns the singleton row; ErrNotFound when it was never saved.
	Get(ctx context.Context) (*PlatformSettings, error)
	Save(ctx context.Context, s *PlatformSettings) error
}
