package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/wricardo/alchemy-game/game/engine"
	"github.com/wricardo/alchemy-game/game/service"
)

var (
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = service.ErrInvalidConfig
)

// DefaultConfigID is the recipe book preferred as the default
const DefaultConfigID = "classic"

// extensions are tried in order when resolving a config ID to a file
var extensions = []string{".yaml", ".yml", ".json"}

// Manager handles recipe book loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.RecipeBook
	configs       map[string]*engine.RecipeBook
	logger        *log.Logger
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	// Ensure config directory exists
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.RecipeBook),
		logger:    log.WithPrefix("config"),
	}

	m.loadDefaultConfig()
	return m, nil
}

// LoadConfig loads a recipe book by ID (file name with or without extension)
func (m *Manager) LoadConfig(name string) (*engine.RecipeBook, error) {
	id := configID(name)

	m.mu.RLock()
	// Check cache first
	if book, exists := m.configs[id]; exists {
		m.mu.RUnlock()
		return book, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if book, exists := m.configs[id]; exists {
		return book, nil
	}

	path, err := m.resolvePath(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	format, _ := engine.FormatFromPath(path)
	book, err := engine.ParseRecipeBook(data, format)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, filepath.Base(path), err)
	}

	m.configs[id] = book
	return book, nil
}

// ListConfigs returns information about all valid recipe books in the directory
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []*service.ConfigInfo
	seen := make(map[string]bool)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := engine.FormatFromPath(entry.Name()); !ok {
			continue
		}

		id := configID(entry.Name())
		if seen[id] {
			continue
		}

		book, err := m.LoadConfig(entry.Name())
		if err != nil {
			m.logger.Warn("skipping invalid recipe book", "file", entry.Name(), "err", err)
			continue
		}
		seen[id] = true

		configs = append(configs, service.NewConfigInfo(entry.Name(), id, book))
	}

	sort.Slice(configs, func(i, j int) bool {
		return configs[i].ConfigID < configs[j].ConfigID
	})
	return configs, nil
}

// GetDefault returns the default recipe book
func (m *Manager) GetDefault() *engine.RecipeBook {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default recipe book by ID
func (m *Manager) SetDefault(name string) error {
	book, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.setDefault(book)
	return nil
}

// RefreshCache drops cached books and reloads the default from disk
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.configs = make(map[string]*engine.RecipeBook)
	m.mu.Unlock()

	m.loadDefaultConfig()
	return nil
}

// SaveConfig validates a recipe book and writes it to disk. The file format
// follows the name's extension; names without one are saved as JSON.
func (m *Manager) SaveConfig(name string, book *engine.RecipeBook) error {
	if book == nil {
		return fmt.Errorf("%w: recipe book is required", ErrInvalidConfig)
	}
	if strings.ContainsAny(name, `/\`) || configID(name) == "" {
		return fmt.Errorf("%w: invalid config name '%s'", ErrInvalidConfig, name)
	}

	book = book.Clone()
	engine.ApplyDefaults(book)
	if err := engine.ValidateRecipeBook(book); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	filename := name
	format, ok := engine.FormatFromPath(name)
	if !ok {
		filename = name + ".json"
		format = "json"
	}

	var data []byte
	var err error
	if format == "yaml" {
		data, err = yaml.Marshal(book)
	} else {
		data, err = json.MarshalIndent(book, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	configPath := filepath.Join(m.configDir, filename)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[configID(name)] = book
	m.mu.Unlock()

	m.logger.Info("recipe book saved", "file", filename, "elements", len(book.Elements), "recipes", len(book.Recipes))
	return nil
}

// loadDefaultConfig picks classic, then the first valid book, then the built-in one
func (m *Manager) loadDefaultConfig() {
	book, err := m.LoadConfig(DefaultConfigID)
	if err != nil {
		configs, listErr := m.ListConfigs()
		if listErr != nil || len(configs) == 0 {
			m.logger.Warn("no recipe books found, using built-in default", "dir", m.configDir)
			m.setDefault(engine.DefaultRecipeBook())
			return
		}

		book, err = m.LoadConfig(configs[0].ConfigID)
		if err != nil {
			m.setDefault(engine.DefaultRecipeBook())
			return
		}
	}

	m.setDefault(book)
}

func (m *Manager) setDefault(book *engine.RecipeBook) {
	m.mu.Lock()
	m.defaultConfig = book
	m.mu.Unlock()
}

// resolvePath finds the file for a config ID
func (m *Manager) resolvePath(name string) (string, error) {
	if strings.ContainsAny(name, `/\`) {
		return "", ErrConfigNotFound
	}

	if _, ok := engine.FormatFromPath(name); ok {
		path := filepath.Join(m.configDir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		return "", ErrConfigNotFound
	}

	for _, ext := range extensions {
		path := filepath.Join(m.configDir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", ErrConfigNotFound
}

// configID strips a recipe book extension from a file name
func configID(name string) string {
	if _, ok := engine.FormatFromPath(name); ok {
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}

