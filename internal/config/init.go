package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/temirov/copier/internal/utils"
)

// InitTarget identifies where configuration should be initialized.
type InitTarget string

const (
	// InitTargetLocal writes configuration into the working directory.
	InitTargetLocal InitTarget = "local"
	// InitTargetGlobal writes configuration into the global configuration directory.
	InitTargetGlobal InitTarget = "global"

	defaultConfigurationTemplate = `ignore:
  patterns: []
  use_defaults: true
  files: []
scan:
  max_depth: 10
generate:
  project_name: ""
  project_description: ""
  max_file_size: 1048576
  read_timeout: 5s
  clipboard: false
  tokens:
    enabled: false
    model: gpt-4o
serve:
  address: 127.0.0.1:8080
`
)

// InitOptions controls how configuration initialization behaves.
type InitOptions struct {
	Target           InitTarget
	Force            bool
	WorkingDirectory string
}

// InitializeConfiguration writes the configuration template to the requested target and
// returns its path. An existing file is kept unless Force is set.
func InitializeConfiguration(options InitOptions) (string, error) {
	destinationPath, err := configurationPath(options)
	if err != nil {
		return "", err
	}
	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if options.Force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	file, err := os.OpenFile(destinationPath, flags, 0o600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("configuration file already exists at %s (use --force to overwrite)", destinationPath)
		}
		return "", fmt.Errorf("create configuration %s: %w", destinationPath, err)
	}
	if _, err := file.WriteString(defaultConfigurationTemplate); err != nil {
		file.Close()
		return "", fmt.Errorf("write configuration to %s: %w", destinationPath, err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("close configuration %s: %w", destinationPath, err)
	}
	return destinationPath, nil
}

func configurationPath(options InitOptions) (string, error) {
	switch options.Target {
	case "", InitTargetLocal:
		directory := options.WorkingDirectory
		if directory == "" {
			current, err := os.Getwd()
			if err != nil {
				return "", fmt.Errorf("determine working directory: %w", err)
			}
			directory = current
		}
		return filepath.Join(directory, utils.ConfigFileName), nil
	case InitTargetGlobal:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		directory := filepath.Join(home, utils.GlobalConfigDirectoryName)
		if err := os.MkdirAll(directory, 0o755); err != nil {
			return "", fmt.Errorf("create %s: %w", directory, err)
		}
		return filepath.Join(directory, utils.GlobalConfigFileName), nil
	default:
		return "", fmt.Errorf("unsupported init target %q", options.Target)
	}
}
