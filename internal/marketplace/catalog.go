package marketplace

import (
	"context"
	"encoding/json"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/thoreinstein/pluginkit/internal/errors"
	"github.com/thoreinstein/pluginkit/internal/logging"
	"github.com/thoreinstein/pluginkit/internal/paths"
	"github.com/thoreinstein/pluginkit/pkg/fileutil"
)

// manifestMaxSize bounds the marketplace manifest read (4 MiB).
const manifestMaxSize = 4 << 20

// ErrInvalidSource indicates a plugin source that leaves the marketplace
// directory.
var ErrInvalidSource = errors.New("plugin source outside marketplace")

// Catalog reads the plugin list of a local marketplace. The list is cached
// after the first successful load. Concurrent loads share one read.
// A Catalog is safe for concurrent use.
type Catalog struct {
	dir   string
	group singleflight.Group

	mu      sync.RWMutex
	plugins []Plugin
	loaded  bool
}

// NewCatalog creates a Catalog for the marketplace rooted at dir.
func NewCatalog(dir string) *Catalog {
	return &Catalog{dir: dir}
}

// Dir returns the marketplace root.
func (c *Catalog) Dir() string {
	return c.dir
}

// Plugins returns the catalog in manifest order. With forceRefresh the
// manifest is read again even if a cached list exists.
func (c *Catalog) Plugins(ctx context.Context, forceRefresh bool) ([]Plugin, error) {
	if !forceRefresh {
		c.mu.RLock()
		if c.loaded {
			plugins := slices.Clone(c.plugins)
			c.mu.RUnlock()
			return plugins, nil
		}
		c.mu.RUnlock()
	}

	v, err, _ := c.group.Do("catalog", func() (any, error) {
		plugins, err := c.load(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.plugins = plugins
		c.loaded = true
		c.mu.Unlock()
		return plugins, nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(v.([]Plugin)), nil
}

// Get returns the plugin called name.
func (c *Catalog) Get(ctx context.Context, name string) (*Plugin, error) {
	plugins, err := c.Plugins(ctx, false)
	if err != nil {
		return nil, err
	}
	for i := range plugins {
		if plugins[i].Name == name {
			return &plugins[i], nil
		}
	}
	return nil, errors.Wrapf(errors.ErrPluginNotFound, "plugin %q", name)
}

// PluginDir returns the directory of p inside the marketplace.
func (c *Catalog) PluginDir(p *Plugin) (string, error) {
	dir := filepath.Join(c.dir, filepath.FromSlash(p.Source))
	rel, err := filepath.Rel(c.dir, dir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Wrapf(ErrInvalidSource, "plugin %q: %s", p.Name, p.Source)
	}
	return dir, nil
}

// manifest is the marketplace.json layout.
type manifest struct {
	Name    string            `json:"name"`
	Plugins []json.RawMessage `json:"plugins"`
}

// manifestPlugin is a plugin entry whose source may be a path string or a
// remote source object.
type manifestPlugin struct {
	Plugin
	Source json.RawMessage `json:"source"`
}

func (c *Catalog) load(ctx context.Context) ([]Plugin, error) {
	logger := logging.FromContext(ctx)
	path := paths.ManifestPath(c.dir)

	data, err := fileutil.ReadFileWithMax(path, manifestMaxSize)
	if err != nil {
		return nil, errors.Wrap(err, "reading marketplace manifest")
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, "decoding marketplace manifest %s", path)
	}

	plugins := make([]Plugin, 0, len(m.Plugins))
	seen := make(map[string]bool, len(m.Plugins))
	for i, raw := range m.Plugins {
		var mp manifestPlugin
		if err := json.Unmarshal(raw, &mp); err != nil {
			logger.Warn("skipping malformed plugin entry", "index", i, "error", err)
			continue
		}
		p := mp.Plugin
		if p.Name == "" {
			logger.Warn("skipping plugin without name", "index", i)
			continue
		}
		if len(mp.Source) == 0 {
			logger.Warn("skipping plugin without source", "plugin", p.Name)
			continue
		}
		if err := json.Unmarshal(mp.Source, &p.Source); err != nil {
			logger.Warn("skipping plugin with remote source", "plugin", p.Name)
			continue
		}
		if seen[p.Name] {
			logger.Warn("skipping duplicate plugin", "plugin", p.Name)
			continue
		}
		seen[p.Name] = true
		plugins = append(plugins, p)
	}

	logger.Debug("loaded marketplace catalog", "marketplace", m.Name, "plugins", len(plugins))
	return plugins, nil
}
