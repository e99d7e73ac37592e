package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/qj0r9j0vc2/alert-insights/internal/domain/logger"
)

// ErrRequiresRestart is returned when a reload changed keys that only take effect after restart.
// Reloadable keys in the same change are still applied.
var ErrRequiresRestart = errors.New("configuration change requires restart")

// reloadDebounce coalesces the burst of events editors emit for one save.
const reloadDebounce = 100 * time.Millisecond

// ReloadFunc is called with the previous and the new configuration after a reload.
type ReloadFunc func(old, updated *Config)

// ConfigManager owns the live configuration and reloads it from disk.
type ConfigManager struct {
	path   string
	logger logger.Logger

	mu        sync.RWMutex
	current   *Config
	callbacks []ReloadFunc

	// load is swapped in tests.
	load func(path string) (*Config, error)

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewConfigManager creates a manager around an already loaded configuration.
func NewConfigManager(path string, initial *Config, log logger.Logger) *ConfigManager {
	if log == nil {
		log = logger.Nop{}
	}
	return &ConfigManager{
		path:    path,
		logger:  log,
		current: initial,
		load:    Load,
	}
}

// Current returns the live configuration. Callers must not modify it.
func (m *ConfigManager) Current() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// OnReload registers fn to run after every applied reload.
func (m *ConfigManager) OnReload(fn ReloadFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, fn)
}

// TryReload reads the file again and applies its reloadable keys.
// It returns ErrRequiresRestart when static keys changed too.
func (m *ConfigManager) TryReload() error {
	if m.path == "" {
		return fmt.Errorf("no config file to reload")
	}

	updated, err := m.load(m.path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	m.mu.Lock()
	old := m.current
	next := *old
	changed := reloadableChanges(old, updated)
	next.Logging = updated.Logging
	static := staticChanges(old, updated)
	m.current = &next
	callbacks := append([]ReloadFunc(nil), m.callbacks...)
	m.mu.Unlock()

	if len(changed) > 0 {
		m.logger.Info("configuration reloaded", "keys", strings.Join(changed, ","))
		for _, fn := range callbacks {
			fn(old, &next)
		}
	}

	if len(static) > 0 {
		for _, key := range static {
			m.logger.Warn("configuration change ignored until restart",
				"key", key,
				"reason", getRestartReason(key),
			)
		}
		return ErrRequiresRestart
	}
	return nil
}

func reloadableChanges(old, updated *Config) []string {
	var keys []string
	if old.Logging.Level != updated.Logging.Level {
		keys = append(keys, "logging.level")
	}
	if old.Logging.Format != updated.Logging.Format {
		keys = append(keys, "logging.format")
	}
	return keys
}

func staticChanges(old, updated *Config) []string {
	sections := map[string][2]any{
		"server":    {old.Server, updated.Server},
		"nerdgraph": {old.NerdGraph, updated.NerdGraph},
		"engine":    {old.Engine, updated.Engine},
		"slack":     {old.Slack, updated.Slack},
		"views":     {old.Views, updated.Views},
	}
	var keys []string
	for key, pair := range sections {
		if !reflect.DeepEqual(pair[0], pair[1]) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// Watch reloads the configuration whenever the file changes, until ctx is done or Close is called.
// The directory is watched so editors that replace the file are followed.
func (m *ConfigManager) Watch(ctx context.Context) error {
	if m.path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(m.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch config directory: %w", err)
	}

	m.watcher = watcher
	m.done = make(chan struct{})
	m.wg.Add(1)
	go m.watchLoop(ctx)
	return nil
}

func (m *ConfigManager) watchLoop(ctx context.Context) {
	defer m.wg.Done()

	target := filepath.Clean(m.path)
	debounce := time.NewTimer(reloadDebounce)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				debounce.Reset(reloadDebounce)
			}
		case <-debounce.C:
			if err := m.TryReload(); err != nil && !errors.Is(err, ErrRequiresRestart) {
				m.logger.Error("automatic config reload failed", "path", m.path, "error", err)
			}
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			m.logger.Warn("config watcher error", "error", err)
		}
	}
}

// Close stops watching.
func (m *ConfigManager) Close() error {
	if m.watcher == nil {
		return nil
	}
	close(m.done)
	err := m.watcher.Close()
	m.wg.Wait()
	m.watcher = nil
	return err
}
