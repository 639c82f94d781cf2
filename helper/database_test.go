package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDatabaseConfiguration(t *testing.T) {
	t.Run("Loads configuration from environment", func(t *testing.T) {
		t.Setenv("DB_HOST", "db.internal")
		t.Setenv("DB_PORT", "5433")
		t.Setenv("DB_DATABASE", "catalog")
		t.Setenv("DB_USERNAME", "oracle")
		t.Setenv("DB_PASSWORD", "secret")
		t.Setenv("DB_SCHEMA", "public")

		config, err := NewDatabaseConfiguration()

		require.NoError(t, err, "Expected NewDatabaseConfiguration to not return an error")
		assert.Equal(t, "db.internal", config.Host)
		assert.Equal(t, "5433", config.Port)
		assert.Equal(t, "catalog", config.Name)
	})

	t.Run("Connection string contains all parameters", func(t *testing.T) {
		config := &DatabaseConfiguration{
			Host:     "localhost",
			Port:     "5432",
			Name:     "catalog",
			User:     "oracle",
			Password: "secret",
			Schema:   "public",
		}

		conn := config.ConnectionString()

		assert.Contains(t, conn, "oracle:secret@localhost:5432/catalog")
		assert.Contains(t, conn, "sslmode=disable")
		assert.Contains(t, conn, "search_path=public")
	})
}
