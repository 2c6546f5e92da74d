package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"totem/model"
	"totem/workbook"
)

func useTempFile(t *testing.T) {
	t.Helper()
	old := FilePath
	FilePath = filepath.Join(t.TempDir(), "totem_config.json")
	t.Cleanup(func() { FilePath = old })
}

func TestLoadDefaults(t *testing.T) {
	useTempFile(t)
	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", c.ListenAddr)
	assert.Equal(t, BackendLocal, c.Backend)
	assert.Equal(t, 300, c.CacheTTLSeconds)
	assert.Equal(t, "Europe/Rome", c.TimeZone)
	assert.NotNil(t, c.ListIDs)
}

func TestSaveAndEnvOverlay(t *testing.T) {
	useTempFile(t)
	require.NoError(t, SaveConfig(Config{
		Backend: BackendGraph,
		ListIDs: map[model.Category]string{model.CategoryTubi: "from-file", model.CategoryForgiati: "F"},
		Mirrors: map[model.Category]workbook.Target{model.CategoryTubi: {Path: "a.xlsx", Table: "T"}},
	}))

	t.Setenv("VITE_TUBI_LIST_ID", "from-vite")
	t.Setenv("EXCEL_FOLDER_PATH", "Magazzino/")
	t.Setenv("SPARK_GUPS_EXCEL_FILE", "spark.xlsx")
	t.Setenv("SPARK_GUPS_EXCEL_TABLE", "Spark")
	t.Setenv("CACHE_TTL_SECONDS", "60")
	t.Setenv("GRAPH_SCOPES", "User.Read, Sites.ReadWrite.All")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, BackendGraph, c.Backend)
	assert.Equal(t, "from-vite", c.ListIDs[model.CategoryTubi])
	assert.Equal(t, "F", c.ListIDs[model.CategoryForgiati])
	assert.Equal(t, workbook.Target{Path: "a.xlsx", Table: "T"}, c.Mirrors[model.CategoryTubi])
	assert.Equal(t, workbook.Target{Path: "Magazzino/spark.xlsx", Table: "Spark"}, c.Mirrors[model.CategorySparkGups])
	assert.Equal(t, 60, c.CacheTTLSeconds)
	assert.Equal(t, []string{"User.Read", "Sites.ReadWrite.All"}, c.GraphScopes)
	assert.Equal(t, c, GetConfig())
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("TOTEM_TEST_FLOW=https://flow.example\n"), 0600))
	t.Cleanup(func() { os.Unsetenv("TOTEM_TEST_FLOW") })

	require.NoError(t, LoadEnv(filepath.Join(dir, "missing.env")))
	require.NoError(t, LoadEnv(path))
	assert.Equal(t, "https://flow.example", os.Getenv("TOTEM_TEST_FLOW"))
}

func TestRedacted(t *testing.T) {
	c := Config{ClientSecret: "s3cret", TenantID: "t"}.Redacted()
	assert.Equal(t, "********", c.ClientSecret)
	assert.Empty(t, c.JWTSigningKey)
	assert.Equal(t, "t", c.TenantID)
}
