// Package catalog tracks the transcript languages available for a pending
// video and which one the user picked.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/anatolykoptev/go_tubechat/internal/engine"
)

// DefaultLanguage is auto-selected whenever the catalog offers it.
const DefaultLanguage = "en"

// Discoverer lists the transcripts the backend can process for a video.
type Discoverer interface {
	DiscoverTranscripts(ctx context.Context, videoRef string) ([]engine.TranscriptOption, error)
}

// Catalog holds the options of the latest successful discovery and the
// current selection. Safe for concurrent use.
type Catalog struct {
	src Discoverer

	mu       sync.RWMutex
	options  []engine.TranscriptOption
	selected string
}

// New returns an empty catalog backed by src.
func New(src Discoverer) *Catalog {
	return &Catalog{src: src}
}

// Discover fetches the transcript list for videoRef and replaces the catalog
// with it, auto-selecting DefaultLanguage or else the first option.
// On failure the previous options and selection are kept.
func (c *Catalog) Discover(ctx context.Context, videoRef string) ([]engine.TranscriptOption, error) {
	opts, err := c.src.DiscoverTranscripts(ctx, videoRef)
	if err != nil {
		if !errors.Is(err, engine.ErrDiscoveryFailed) {
			err = fmt.Errorf("%w: %w", engine.ErrDiscoveryFailed, err)
		}
		return nil, err
	}
	if len(opts) == 0 {
		return nil, fmt.Errorf("%w: no transcripts available", engine.ErrDiscoveryFailed)
	}

	snapshot := slices.Clone(opts)
	sel := pickDefault(snapshot)

	c.mu.Lock()
	c.options = snapshot
	c.selected = sel
	c.mu.Unlock()

	slog.Debug("catalog: discovered",
		slog.Int("options", len(snapshot)),
		slog.String("selected", sel),
	)
	return slices.Clone(snapshot), nil
}

func pickDefault(opts []engine.TranscriptOption) string {
	for _, o := range opts {
		if o.LanguageCode == DefaultLanguage {
			return o.LanguageCode
		}
	}
	return opts[0].LanguageCode
}

// Select makes code the chosen language. Codes absent from the catalog fail
// with engine.ErrUnknownLanguage.
func (c *Catalog) Select(code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !slices.ContainsFunc(c.options, func(o engine.TranscriptOption) bool { return o.LanguageCode == code }) {
		return fmt.Errorf("%w: %q", engine.ErrUnknownLanguage, code)
	}
	c.selected = code
	return nil
}

// Options returns a copy of the current options.
func (c *Catalog) Options() []engine.TranscriptOption {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.options)
}

// Selected returns the chosen language code, or "" before any discovery.
func (c *Catalog) Selected() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selected
}

// TranslateToEnglish reports whether the backend should translate the chosen
// transcript.
func (c *Catalog) TranslateToEnglish() bool {
	sel := c.Selected()
	return sel != "" && sel != DefaultLanguage
}

// Reset empties the catalog.
func (c *Catalog) Reset() {
	c.mu.Lock()
	c.options = nil
	c.selected = ""
	c.mu.Unlock()
}
