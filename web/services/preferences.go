package services

import (
	"encoding/json"
	"os"
	"sync"

	"go.uber.org/zap"
)

// preferencesFile is the on-disk shape. One file, one concern: settings that
// must outlive sessions. Connection membership is deliberately absent.
type preferencesFile struct {
	SearchAugmentationEnabled bool `json:"search_augmentation_enabled"`
}

// Preferences persists the durable user preferences. It is shared across
// sessions: session state vanishes with the tab, this does not.
type Preferences struct {
	path   string
	logger *zap.Logger

	mu   sync.RWMutex
	data preferencesFile
}

// NewPreferences loads the preferences file, falling back to defaults when it
// is absent or unreadable.
func NewPreferences(path string, searchDefault bool, logger *zap.Logger) *Preferences {
	p := &Preferences{
		path:   path,
		logger: logger,
		data:   preferencesFile{SearchAugmentationEnabled: searchDefault},
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("Could not read preferences file, using defaults",
				zap.String("path", path),
				zap.Error(err))
		}
		return p
	}
	if err := json.Unmarshal(raw, &p.data); err != nil {
		logger.Warn("Could not parse preferences file, using defaults",
			zap.String("path", path),
			zap.Error(err))
		p.data = preferencesFile{SearchAugmentationEnabled: searchDefault}
	}
	return p
}

// SearchAugmentationEnabled returns the persisted enabled flag.
func (p *Preferences) SearchAugmentationEnabled() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.data.SearchAugmentationEnabled
}

// SetSearchAugmentationEnabled persists the flag immediately. Write failures
// keep the in-memory value so the current session still behaves as asked.
func (p *Preferences) SetSearchAugmentationEnabled(enabled bool) error {
	p.mu.Lock()
	p.data.SearchAugmentationEnabled = enabled
	raw, err := json.MarshalIndent(p.data, "", "  ")
	p.mu.Unlock()
	if err != nil {
		return err
	}

	if err := os.WriteFile(p.path, raw, 0644); err != nil {
		p.logger.Warn("Failed to persist preferences",
			zap.String("path", p.path),
			zap.Error(err))
		return err
	}
	return nil
}
