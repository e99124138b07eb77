package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yaegashi/grafanaops/adapters/store/inmem"
	"github.com/yaegashi/grafanaops/adapters/store/rdb"
	"github.com/yaegashi/grafanaops/domain"
	"github.com/yaegashi/grafanaops/usecase/provider"
	"github.com/yaegashi/grafanaops/usecase/service"
	"github.com/yaegashi/grafanaops/usecase/stack"
)

const defaultDBURL = "file:grafanaops.yml"

// findFlag recursively searches parents for a flag.
func findFlag(cmd *cobra.Command, name string) *pflag.Flag {
	for c := cmd; c != nil; c = c.Parent() {
		if f := c.Flags().Lookup(name); f != nil {
			return f
		}
		if f := c.PersistentFlags().Lookup(name); f != nil {
			return f
		}
	}
	return nil
}

// getDBURL extracts the db-url flag value from command hierarchy.
func getDBURL(cmd *cobra.Command) string {
	f := findFlag(cmd, "db-url")
	if f != nil && f.Value.String() != "" {
		return f.Value.String()
	}
	return defaultDBURL
}

// buildRepos creates repositories based on db-url.
// A file: URL loads the configuration file into an in-memory store.
func buildRepos(cmd *cobra.Command) (*domain.Repositories, error) {
	dbURL := getDBURL(cmd)

	switch {
	case strings.HasPrefix(dbURL, "file:"):
		filePath := strings.TrimPrefix(dbURL, "file:")
		if filePath == "" {
			return nil, fmt.Errorf("file path is required for file: URL")
		}
		store := inmem.NewStore()
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		if err := store.LoadFromFile(ctx, filePath); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", filePath, err)
		}
		return store.Repositories(), nil

	case strings.HasPrefix(dbURL, "sqlite:") || strings.HasPrefix(dbURL, "sqlite3:"):
		db, err := rdb.OpenFromURL(dbURL)
		if err != nil {
			return nil, err
		}
		if err := rdb.AutoMigrate(db); err != nil {
			return nil, err
		}
		return rdb.NewRepositories(db), nil

	default:
		return nil, fmt.Errorf("unsupported db scheme: %s", dbURL)
	}
}

// buildStackRepos creates repositories needed for stack use cases.
func buildStackRepos(cmd *cobra.Command) (*domain.Repositories, *stack.Repos, error) {
	repos, err := buildRepos(cmd)
	if err != nil {
		return nil, nil, err
	}
	return repos, &stack.Repos{Provider: repos.Provider, Stack: repos.Stack}, nil
}

// buildProviderRepos creates repositories needed for provider use cases.
func buildProviderRepos(cmd *cobra.Command) (*provider.Repos, error) {
	repos, err := buildRepos(cmd)
	if err != nil {
		return nil, err
	}
	return &provider.Repos{Service: repos.Service, Provider: repos.Provider, Stack: repos.Stack}, nil
}

// buildServiceRepos creates repositories needed for service use cases.
func buildServiceRepos(cmd *cobra.Command) (*service.Repos, error) {
	repos, err := buildRepos(cmd)
	if err != nil {
		return nil, err
	}
	return &service.Repos{Service: repos.Service, Provider: repos.Provider}, nil
}
