package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDefaultsLocal(t *testing.T) {
	cfg := &Config{BuildTarget: "local", DBDriver: "auto", SemanticStore: "auto"}
	require.NoError(t, cfg.ResolveDefaults())
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "chromem", cfg.SemanticStore)
}

func TestResolveDefaultsCloudDev(t *testing.T) {
	cfg := &Config{BuildTarget: "cloud-dev", DBDriver: "", SemanticStore: ""}
	require.NoError(t, cfg.ResolveDefaults())
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "weaviate", cfg.SemanticStore)
}

func TestResolveDefaultsExplicitOverride(t *testing.T) {
	cfg := &Config{BuildTarget: "local", DBDriver: "postgres", SemanticStore: "weaviate"}
	require.NoError(t, cfg.ResolveDefaults())
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "weaviate", cfg.SemanticStore)
}

func TestResolveDefaultsRejectsUnknown(t *testing.T) {
	assert.Error(t, (&Config{BuildTarget: "prod"}).ResolveDefaults())
	assert.Error(t, (&Config{BuildTarget: "local", DBDriver: "mysql"}).ResolveDefaults())
	assert.Error(t, (&Config{BuildTarget: "local", DBDriver: "sqlite", SemanticStore: "pinecone"}).ResolveDefaults())
}

func TestNewForTesting(t *testing.T) {
	cfg := NewForTesting()
	assert.True(t, cfg.IsTesting())
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "chromem", cfg.SemanticStore)
	assert.Equal(t, ":8080", cfg.GetHTTPAddr())
}
