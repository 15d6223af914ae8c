package cli

import (
	"fmt"

	"reelgen/internal/config"
	"reelgen/internal/paths"
)

// loadWorkspace resolves the workspace, loads its .env file and config and
// applies environment overrides.
func loadWorkspace() (paths.WorkspacePaths, config.Config, error) {
	wp, err := paths.Resolve(projectDir)
	if err != nil {
		return paths.WorkspacePaths{}, config.Config{}, err
	}
	exists, err := paths.DirExists(wp.Root)
	if err != nil {
		return wp, config.Config{}, fmt.Errorf("stat workspace dir: %w", err)
	}
	if !exists {
		return wp, config.Config{}, fmt.Errorf("workspace directory does not exist: %s", wp.Root)
	}

	if err := config.LoadEnv(wp.EnvFile); err != nil {
		return wp, config.Config{}, err
	}
	cfg, err := config.Load(wp.ConfigFile)
	if err != nil {
		return wp, config.Config{}, err
	}
	cfg.ApplyEnv()
	return paths.ApplyConfig(wp, cfg), cfg, nil
}
