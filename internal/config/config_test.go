package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftcap/narrativescan/internal/themes"
)

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Cluster.MinClusterSize, cfg.Cluster.MinClusterSize)
}

func TestLoad_OverlayKeepsUntouchedDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overlay.yaml")
	overlay := []byte("cluster:\n  min_cluster_size: 5\n")
	require.NoError(t, os.WriteFile(path, overlay, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Cluster.MinClusterSize)
	assert.Equal(t, Default().Cluster.MaxClusters, cfg.Cluster.MaxClusters,
		"fields missing from the overlay keep defaults")
}

func TestLoad_RejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	bad := []byte("scoring:\n  base_weights:\n    volume: 0.9\n")
	require.NoError(t, os.WriteFile(path, bad, 0o644))

	_, err := Load(path)
	assert.Error(t, err, "weights not summing to 1 must be rejected")
}

func TestValidate_RejectsUnorderedLifecycleThresholds(t *testing.T) {
	cfg := Default()
	cfg.Narrative.Lifecycle.EmergingMax = 70
	cfg.Narrative.Lifecycle.GrowingMax = 65

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lifecycle")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestCatalog_CustomThemesTakePrecedence(t *testing.T) {
	cfg := Default()
	require.Len(t, cfg.Catalog().Categories, 10, "default catalog carries ten categories")

	cfg.Themes = []themes.Category{{Name: "custom", Keywords: []string{"zzz"}, Weight: 1}}
	catalog := cfg.Catalog()
	require.Len(t, catalog.Categories, 1)
	assert.Equal(t, "custom", catalog.Categories[0].Name)
}
