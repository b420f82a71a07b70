package marketplace

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/pluginkit/internal/errors"
	"github.com/thoreinstein/pluginkit/internal/logging"
)

func pluginNames(plugins []Plugin) []string {
	names := make([]string, len(plugins))
	for i, p := range plugins {
		names[i] = p.Name
	}
	return names
}

func TestCatalog_Plugins(t *testing.T) {
	root := newMarketplace(t)
	ctx := logging.NewContext(t.Context(), logging.ForTest(t))
	c := NewCatalog(root)

	plugins, err := c.Plugins(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"review", "escape", "review-mirror"}, pluginNames(plugins))

	review := plugins[0]
	assert.Equal(t, "Code review helpers", review.Description)
	assert.Equal(t, "development", review.Category)
	assert.Equal(t, "./plugins/review", review.Source)
	assert.Equal(t, "1.2.0", review.Version)
	require.NotNil(t, review.Author)
	assert.Equal(t, "ada@example.com", review.Author.Email)
}

func TestCatalog_CacheAndRefresh(t *testing.T) {
	root := newMarketplace(t)
	c := NewCatalog(root)

	_, err := c.Plugins(t.Context(), false)
	require.NoError(t, err)

	manifest := `{"plugins": [{"name": "fresh", "description": "d", "category": "c", "source": "./fresh"}]}`
	require.NoError(t, os.WriteFile(filepath.Join(root, ".claude-plugin", "marketplace.json"), []byte(manifest), 0o644))

	cached, err := c.Plugins(t.Context(), false)
	require.NoError(t, err)
	assert.Equal(t, []string{"review", "escape", "review-mirror"}, pluginNames(cached))

	refreshed, err := c.Plugins(t.Context(), true)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, pluginNames(refreshed))

	again, err := c.Plugins(t.Context(), false)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, pluginNames(again))
}

func TestCatalog_ReturnsCopies(t *testing.T) {
	c := NewCatalog(newMarketplace(t))

	plugins, err := c.Plugins(t.Context(), false)
	require.NoError(t, err)
	plugins[0].Name = "changed"

	again, err := c.Plugins(t.Context(), false)
	require.NoError(t, err)
	assert.Equal(t, "review", again[0].Name)
}

func TestCatalog_Concurrent(t *testing.T) {
	c := NewCatalog(newMarketplace(t))

	var wg sync.WaitGroup
	results := make([][]Plugin, 16)
	errs := make([]error, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = c.Plugins(t.Context(), i%4 == 0)
		}()
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, []string{"review", "escape", "review-mirror"}, pluginNames(results[i]))
	}
}

func TestCatalog_Get(t *testing.T) {
	c := NewCatalog(newMarketplace(t))

	p, err := c.Get(t.Context(), "review")
	require.NoError(t, err)
	assert.Equal(t, "review", p.Name)

	_, err = c.Get(t.Context(), "nonexistent-plugin")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrPluginNotFound))
	assert.Contains(t, err.Error(), "not found")

	_, err = c.Get(t.Context(), "remote")
	assert.True(t, errors.Is(err, errors.ErrPluginNotFound), "remote sources are not listed")
}

func TestCatalog_MissingManifest(t *testing.T) {
	_, err := NewCatalog(t.TempDir()).Plugins(t.Context(), false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestCatalog_PluginDir(t *testing.T) {
	root := newMarketplace(t)
	c := NewCatalog(root)

	dir, err := c.PluginDir(&Plugin{Name: "review", Source: "./plugins/review"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "plugins", "review"), dir)

	dir, err = c.PluginDir(&Plugin{Name: "root", Source: "."})
	require.NoError(t, err)
	assert.Equal(t, root, dir)

	_, err = c.PluginDir(&Plugin{Name: "escape", Source: "../outside"})
	assert.True(t, errors.Is(err, ErrInvalidSource))

	_, err = c.PluginDir(&Plugin{Name: "sneaky", Source: "plugins/../../x"})
	assert.True(t, errors.Is(err, ErrInvalidSource))
}
