package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"reelgen/internal/config"
)

// WorkspacePaths captures canonical locations for a reelgen workspace.
type WorkspacePaths struct {
	Root        string
	ConfigFile  string
	EnvFile     string
	MetaDir     string
	OutputDir   string
	LogsDir     string
	HistoryFile string
}

// Resolve determines the workspace root using the optional --project flag or
// the current working directory when the flag is empty.
func Resolve(projectFlag string) (WorkspacePaths, error) {
	var (
		root string
		err  error
	)

	if projectFlag != "" {
		root, err = filepath.Abs(projectFlag)
	} else {
		root, err = os.Getwd()
	}
	if err != nil {
		return WorkspacePaths{}, fmt.Errorf("resolve workspace root: %w", err)
	}

	return newWorkspacePaths(root), nil
}

func newWorkspacePaths(root string) WorkspacePaths {
	metaDir := filepath.Join(root, ".reelgen")
	return WorkspacePaths{
		Root:        root,
		ConfigFile:  filepath.Join(root, "reelgen.yaml"),
		EnvFile:     filepath.Join(root, ".env"),
		MetaDir:     metaDir,
		OutputDir:   filepath.Join(root, "output"),
		LogsDir:     filepath.Join(root, "logs"),
		HistoryFile: filepath.Join(metaDir, "history.json"),
	}
}

// ApplyConfig resolves config-relative locations against the workspace root.
func ApplyConfig(wp WorkspacePaths, cfg config.Config) WorkspacePaths {
	if dir := strings.TrimSpace(cfg.Output.Dir); dir != "" {
		wp.OutputDir = resolveWorkspacePath(wp.Root, dir)
	}
	return wp
}

// OutputFile returns the local path the encoder writes to.
func (p WorkspacePaths) OutputFile(cfg config.Config) string {
	name := strings.TrimSpace(cfg.Output.File)
	if name == "" {
		name = "reel.mp4"
	}
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Join(p.OutputDir, name)
}

// AudioPath resolves the configured audio file or directory.
func (p WorkspacePaths) AudioPath(cfg config.Config) string {
	value := strings.TrimSpace(cfg.Audio.Path)
	if value == "" {
		return ""
	}
	return resolveWorkspacePath(p.Root, value)
}

func resolveWorkspacePath(root, value string) string {
	if filepath.IsAbs(value) {
		return filepath.Clean(value)
	}
	return filepath.Join(root, value)
}

// EnsureMetaDirs creates the output/logs hierarchy alongside the hidden
// .reelgen metadata directory.
func (p WorkspacePaths) EnsureMetaDirs() error {
	dirs := []string{p.MetaDir, p.OutputDir, p.LogsDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// DirExists reports whether a path exists and is a directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
