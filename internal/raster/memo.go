package raster

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/singleflight"
)

var log = commonlog.GetLogger("oklch.raster")

// Kind identifies which generator produced a raster.
type Kind string

const (
	KindPlane Kind = "plane"
	KindStrip Kind = "strip"
)

// Key identifies a rendered raster. Build keys with PlaneKey or StripKey so
// equivalent requests share an entry.
type Key struct {
	Kind   Kind
	Width  int
	Height int
	Hue    float64
}

// PlaneKey returns the key for a color plane. Hue is wrapped into [0, 360)
// and rounded to a thousandth of a degree.
func PlaneKey(hue float64, width, height int) Key {
	hue = math.Mod(hue, 360)
	if hue < 0 {
		hue += 360
	}
	hue = math.Round(hue*1000) / 1000
	if hue == 360 {
		hue = 0
	}
	return Key{Kind: KindPlane, Width: width, Height: height, Hue: hue}
}

// StripKey returns the key for a hue strip.
func StripKey(width, height int) Key {
	return Key{Kind: KindStrip, Width: width, Height: height}
}

// String returns the key in the form used by persistent stores,
// e.g. "plane/120.5/256x256" or "strip/360x24".
func (k Key) String() string {
	if k.Kind == KindStrip {
		return fmt.Sprintf("%s/%dx%d", k.Kind, k.Width, k.Height)
	}
	return fmt.Sprintf("%s/%s/%dx%d", k.Kind, formatHue(k.Hue), k.Width, k.Height)
}

func formatHue(h float64) string {
	s := fmt.Sprintf("%.3f", h)
	for len(s) > 1 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	return s
}

// Render produces the raw RGBA buffer for key.
func Render(key Key) ([]byte, error) {
	switch key.Kind {
	case KindPlane:
		return ColorPlane(key.Hue, key.Width, key.Height)
	case KindStrip:
		return HueStrip(key.Width, key.Height)
	}
	return nil, fmt.Errorf("unknown raster kind %q", key.Kind)
}

// RenderPNG renders key and encodes it as PNG.
func RenderPNG(key Key) ([]byte, error) {
	buf, err := Render(key)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := EncodePNG(&out, buf, key.Width, key.Height); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// Store is a persistent second level behind Memo.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, data []byte) error
}

// Memo keeps recently rendered PNGs in memory. When full, the oldest entry
// is evicted. Concurrent requests for the same key render once.
type Memo struct {
	size  int
	store Store
	group singleflight.Group

	mu      sync.Mutex
	entries map[Key][]byte
	order   []Key
}

// NewMemo creates a memo holding at most size entries. store may be nil.
func NewMemo(size int, store Store) *Memo {
	if size <= 0 {
		size = 1
	}
	return &Memo{
		size:    size,
		store:   store,
		entries: make(map[Key][]byte, size),
	}
}

// PNG returns the encoded raster for key, rendering it on a miss. The
// returned slice must not be modified.
func (m *Memo) PNG(ctx context.Context, key Key) ([]byte, error) {
	if data, ok := m.lookup(key); ok {
		return data, nil
	}

	v, err, _ := m.group.Do(key.String(), func() (any, error) {
		// Waiters share this result; the first caller's cancellation must not reach the store.
		ctx := context.WithoutCancel(ctx)
		if data, ok := m.lookup(key); ok {
			return data, nil
		}

		if m.store != nil {
			data, ok, err := m.store.Get(ctx, key.String())
			if err != nil {
				log.Warningf("store lookup for %s: %s", key, err)
			} else if ok {
				m.add(key, data)
				return data, nil
			}
		}

		data, err := RenderPNG(key)
		if err != nil {
			return nil, err
		}
		m.add(key, data)

		if m.store != nil {
			if err := m.store.Put(ctx, key.String(), data); err != nil {
				log.Warningf("store write for %s: %s", key, err)
			}
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Len returns the number of entries held in memory.
func (m *Memo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memo) lookup(key Key) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.entries[key]
	return data, ok
}

func (m *Memo) add(key Key, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[key]; ok {
		return
	}
	for len(m.order) >= m.size {
		delete(m.entries, m.order[0])
		m.order = m.order[1:]
	}
	m.entries[key] = data
	m.order = append(m.order, key)
}
