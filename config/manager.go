package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Manager layers an optional YAML config file over the environment
// configuration and reloads it when the file changes on disk.
type Manager struct {
	config      *Config
	watchers    []ConfigWatcher
	mu          sync.RWMutex
	configPath  string
	fileWatcher *fsnotify.Watcher
	stopChan    chan struct{}
	environment string
}

// ConfigWatcher is called when configuration changes
type ConfigWatcher func(oldConfig, newConfig *Config) error

// NewManager creates a new configuration manager
func NewManager(environment string) *Manager {
	return &Manager{
		environment: environment,
		watchers:    make([]ConfigWatcher, 0),
		stopChan:    make(chan struct{}),
	}
}

// LoadFromEnv loads configuration from environment variables only
func (m *Manager) LoadFromEnv() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg := Load()
	cfg.Server.Environment = m.environment
	m.config = cfg
	return nil
}

// LoadFromFile loads configuration from a YAML file. Values present in
// the file win over the environment; everything else keeps the
// environment defaults.
func (m *Manager) LoadFromFile(filePath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filePath, err)
	}

	cfg := Load()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filePath, err)
	}

	cfg.Server.Environment = m.environment
	m.config = cfg
	m.configPath = filePath
	return nil
}

// StartWatching starts watching the configuration file for changes
func (m *Manager) StartWatching() error {
	if m.configPath == "" {
		return nil // nothing to watch
	}

	var err error
	m.fileWatcher, err = fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := m.fileWatcher.Add(m.configPath); err != nil {
		return fmt.Errorf("failed to watch config file %s: %w", m.configPath, err)
	}

	go m.watchLoop()
	return nil
}

// StopWatching stops watching the configuration file
func (m *Manager) StopWatching() {
	if m.fileWatcher != nil {
		close(m.stopChan)
		m.fileWatcher.Close()
	}
}

// AddWatcher adds a configuration change watcher
func (m *Manager) AddWatcher(watcher ConfigWatcher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.watchers = append(m.watchers, watcher)
}

// GetConfig returns a copy of the current configuration (thread-safe)
func (m *Manager) GetConfig() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	configCopy := *m.config
	return &configCopy
}

// Reload forces a configuration reload and notifies watchers
func (m *Manager) Reload() error {
	oldConfig := m.GetConfig()

	if m.configPath == "" {
		if err := m.LoadFromEnv(); err != nil {
			return err
		}
	} else {
		if err := m.LoadFromFile(m.configPath); err != nil {
			return err
		}
	}

	return m.notifyWatchers(oldConfig, m.GetConfig())
}

func (m *Manager) watchLoop() {
	for {
		select {
		case event, ok := <-m.fileWatcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Write == fsnotify.Write {
				// Editors often write in several bursts; let the file settle.
				time.Sleep(100 * time.Millisecond)
				if err := m.Reload(); err != nil {
					fmt.Printf("Failed to reload config: %v\n", err)
				}
			}
		case err, ok := <-m.fileWatcher.Errors:
			if !ok {
				return
			}
			fmt.Printf("Config watcher error: %v\n", err)
		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) notifyWatchers(oldConfig, newConfig *Config) error {
	m.mu.RLock()
	watchers := m.watchers
	m.mu.RUnlock()

	for _, watcher := range watchers {
		if err := watcher(oldConfig, newConfig); err != nil {
			return fmt.Errorf("config watcher failed: %w", err)
		}
	}
	return nil
}
