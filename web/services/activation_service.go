package services

import (
	"sort"
	"sync"

	"go.uber.org/zap"
)

// ActivationService tracks which connections augment chat sends. The enabled
// flag is durable; the active id set is session-scoped memory only, because
// the connections it references cannot outlive the session either.
type ActivationService struct {
	prefs     *Preferences
	directory *ConnectionService
	logger    *zap.Logger

	mu          sync.RWMutex
	active      map[string]struct{}
	initialized bool
}

// NewActivationService wires the activation state to the connection
// directory so the active set can never dangle behind cache changes.
func NewActivationService(prefs *Preferences, directory *ConnectionService, logger *zap.Logger) *ActivationService {
	as := &ActivationService{
		prefs:     prefs,
		directory: directory,
		logger:    logger,
		active:    make(map[string]struct{}),
	}
	directory.OnChange(as.applyDirectoryEvent)
	return as
}

// applyDirectoryEvent keeps active ⊆ directory on every cache change. The
// first full listing of a session activates everything it returns: these
// connections are session-scoped, so there is no prior de-activation choice
// to restore. A create is fail-open and activates the new record.
func (as *ActivationService) applyDirectoryEvent(event DirectoryEvent) {
	as.mu.Lock()
	defer as.mu.Unlock()

	present := make(map[string]struct{}, len(event.Connections))
	for _, conn := range event.Connections {
		present[conn.ID] = struct{}{}
	}
	for id := range as.active {
		if _, ok := present[id]; !ok {
			delete(as.active, id)
		}
	}

	switch event.Kind {
	case DirectoryList:
		if !as.initialized {
			for id := range present {
				as.active[id] = struct{}{}
			}
			as.initialized = true
			as.logger.Debug("Auto-activated listed connections",
				zap.Int("count", len(as.active)))
		}
	case DirectoryCreate:
		if _, ok := present[event.ConnectionID]; ok {
			as.active[event.ConnectionID] = struct{}{}
		}
	}
}

// Enabled returns the persisted augmentation toggle.
func (as *ActivationService) Enabled() bool {
	return as.prefs.SearchAugmentationEnabled()
}

// SetEnabled persists the toggle immediately. The active set is untouched.
func (as *ActivationService) SetEnabled(enabled bool) error {
	return as.prefs.SetSearchAugmentationEnabled(enabled)
}

// ToggleActive flips one connection in or out of the active set. Unknown ids
// are ignored to preserve the subset invariant. Returns the new state.
func (as *ActivationService) ToggleActive(id string) bool {
	if _, ok := as.directory.Get(id); !ok {
		return false
	}

	as.mu.Lock()
	defer as.mu.Unlock()
	if _, ok := as.active[id]; ok {
		delete(as.active, id)
		return false
	}
	as.active[id] = struct{}{}
	return true
}

// SetActive replaces the active set, intersected with directory membership.
func (as *ActivationService) SetActive(ids []string) {
	as.mu.Lock()
	defer as.mu.Unlock()
	as.active = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := as.directory.Get(id); ok {
			as.active[id] = struct{}{}
		}
	}
}

// ActiveIDs returns the active set, sorted for stable output.
func (as *ActivationService) ActiveIDs() []string {
	as.mu.RLock()
	defer as.mu.RUnlock()
	return as.sortedActiveLocked()
}

// ResolveForSend returns the connection ids a send should carry, or nil when
// augmentation should be omitted entirely. Pure read, no side effects.
func (as *ActivationService) ResolveForSend() []string {
	if !as.prefs.SearchAugmentationEnabled() {
		return nil
	}

	as.mu.RLock()
	defer as.mu.RUnlock()
	if len(as.active) == 0 {
		return nil
	}
	return as.sortedActiveLocked()
}

// HasUsableSelection reports whether any active connection actually has
// collections or corpora selected. Used to warn before a no-op augmentation.
func (as *ActivationService) HasUsableSelection() bool {
	as.mu.RLock()
	ids := as.sortedActiveLocked()
	as.mu.RUnlock()

	for _, id := range ids {
		if conn, ok := as.directory.Get(id); ok && conn.HasSelections() {
			return true
		}
	}
	return false
}

func (as *ActivationService) sortedActiveLocked() []string {
	ids := make([]string, 0, len(as.active))
	for id := range as.active {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
