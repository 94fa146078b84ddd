package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"prompt-cms/config"
	"prompt-cms/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgresContainer(t *testing.T) config.DatabaseConfig {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container test skipped in short mode")
	}
	tc.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_PASSWORD": "password", "POSTGRES_DB": "testdb", "POSTGRES_USER": "postgres"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(time.Minute),
	}

	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return config.DatabaseConfig{
		Driver:         config.DriverPostgres,
		URL:            fmt.Sprintf("postgres://postgres:password@%s:%d/testdb?sslmode=disable", host, port.Int()),
		LogLevel:       "silent",
		MigrationsPath: "../migrations",
		MaxOpenConns:   5,
		MaxIdleConns:   2,
	}
}

func TestPostgres_MigrationsAndCascades(t *testing.T) {
	cfg := setupPostgresContainer(t)
	require.NoError(t, config.Migrate(cfg, true))

	db, err := config.InitDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	ctx := context.Background()
	prompts := NewPromptRepository(db)
	categories := NewCategoryRepository(db)
	tags := NewTagRepository(db)
	links := NewLinkRepository(db)

	p := &models.Prompt{Title: "Email Writer", Content: "Write an email", IsPublic: true, Author: "owner@example.com"}
	require.NoError(t, prompts.Create(ctx, p))
	c := &models.Category{Name: "writing"}
	require.NoError(t, categories.Create(ctx, c))
	tag := &models.Tag{Name: "email"}
	require.NoError(t, tags.Create(ctx, tag))

	require.NoError(t, links.AddCategory(ctx, p.ID, c.ID))
	require.NoError(t, links.AddCategory(ctx, p.ID, c.ID), "duplicate link is ignored")
	require.NoError(t, links.AddTag(ctx, p.ID, tag.ID))

	public := true
	found, total, err := prompts.List(ctx, models.PromptFilter{IsPublic: &public, Search: "writer", Category: "writing"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, found, 1)
	assert.Equal(t, []string{"email"}, found[0].TagNames())

	require.Error(t, categories.Create(ctx, &models.Category{Name: "writing"}), "names are unique")

	require.NoError(t, db.WithContext(ctx).Exec("DELETE FROM prompts WHERE id = ?", p.ID).Error)
	remaining, err := links.LinksByCategory(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining, "links cascade with the prompt")

	require.NoError(t, config.Migrate(cfg, false))
}
