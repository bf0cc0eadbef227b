package worker

import (
	"context"
	"fmt"

	"github.com/jsvensson/oklchstudio/internal/raster"
)

// StoreRenderer renders rasters directly into a store. Keys already stored
// are not rendered again. Store failures are returned, not logged.
type StoreRenderer struct {
	Store raster.Store
}

// PNG implements Renderer.
func (s StoreRenderer) PNG(ctx context.Context, key raster.Key) ([]byte, error) {
	data, ok, err := s.Store.Get(ctx, key.String())
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	if ok {
		return data, nil
	}

	data, err = raster.RenderPNG(key)
	if err != nil {
		return nil, err
	}
	if err := s.Store.Put(ctx, key.String(), data); err != nil {
		return nil, fmt.Errorf("storing %s: %w", key, err)
	}
	log.Debugf("stored %s (%d bytes)", key, len(data))
	return data, nil
}
