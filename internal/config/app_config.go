// Package config loads copier defaults from the global and local YAML configuration files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/temirov/copier/internal/utils"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds defaults for every command. Unset values stay nil or empty so
// command line flags and built-in defaults can tell them apart from explicit choices.
type ApplicationConfiguration struct {
	Ignore   IgnoreConfiguration   `mapstructure:"ignore"`
	Scan     ScanConfiguration     `mapstructure:"scan"`
	Generate GenerateConfiguration `mapstructure:"generate"`
	Serve    ServeConfiguration    `mapstructure:"serve"`
}

// IgnoreConfiguration configures the initial ignore pattern list.
type IgnoreConfiguration struct {
	Patterns    []string `mapstructure:"patterns"`
	UseDefaults *bool    `mapstructure:"use_defaults"`
	Files       []string `mapstructure:"files"`
}

// ScanConfiguration configures directory walking.
type ScanConfiguration struct {
	MaxDepth *int `mapstructure:"max_depth"`
}

// GenerateConfiguration configures document generation and export.
type GenerateConfiguration struct {
	ProjectName        string             `mapstructure:"project_name"`
	ProjectDescription string             `mapstructure:"project_description"`
	MaxFileSize        *int64             `mapstructure:"max_file_size"`
	ReadTimeout        *time.Duration     `mapstructure:"read_timeout"`
	Clipboard          *bool              `mapstructure:"clipboard"`
	Tokens             TokenConfiguration `mapstructure:"tokens"`
}

// TokenConfiguration controls token counting defaults.
type TokenConfiguration struct {
	Enabled *bool  `mapstructure:"enabled"`
	Model   string `mapstructure:"model"`
}

// ServeConfiguration configures the HTTP API.
type ServeConfiguration struct {
	Address string `mapstructure:"address"`
}

// LoadApplicationConfiguration loads configuration from global and local files.
// The local file, or the explicit file when given, overrides the global one.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.GlobalConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	localConfig, loadErr := loadConfigurationFromPath(localPath)
	if loadErr != nil {
		return ApplicationConfiguration{}, loadErr
	}
	return merged.Merge(localConfig), nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) string {
	if explicitPath == "" {
		return filepath.Join(workingDirectory, utils.ConfigFileName)
	}
	if filepath.IsAbs(explicitPath) {
		return explicitPath
	}
	return filepath.Join(workingDirectory, explicitPath)
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	result.Ignore = result.Ignore.merge(override.Ignore)
	result.Scan = result.Scan.merge(override.Scan)
	result.Generate = result.Generate.merge(override.Generate)
	if override.Serve.Address != "" {
		result.Serve.Address = override.Serve.Address
	}
	return result
}

func (config IgnoreConfiguration) merge(override IgnoreConfiguration) IgnoreConfiguration {
	result := config
	if len(override.Patterns) > 0 {
		result.Patterns = append([]string{}, override.Patterns...)
	}
	if override.UseDefaults != nil {
		result.UseDefaults = clonePointer(override.UseDefaults)
	}
	if len(override.Files) > 0 {
		result.Files = append([]string{}, override.Files...)
	}
	return result
}

func (config ScanConfiguration) merge(override ScanConfiguration) ScanConfiguration {
	result := config
	if override.MaxDepth != nil {
		result.MaxDepth = clonePointer(override.MaxDepth)
	}
	return result
}

func (config GenerateConfiguration) merge(override GenerateConfiguration) GenerateConfiguration {
	result := config
	if override.ProjectName != "" {
		result.ProjectName = override.ProjectName
	}
	if override.ProjectDescription != "" {
		result.ProjectDescription = override.ProjectDescription
	}
	if override.MaxFileSize != nil {
		result.MaxFileSize = clonePointer(override.MaxFileSize)
	}
	if override.ReadTimeout != nil {
		result.ReadTimeout = clonePointer(override.ReadTimeout)
	}
	if override.Clipboard != nil {
		result.Clipboard = clonePointer(override.Clipboard)
	}
	if override.Tokens.Enabled != nil {
		result.Tokens.Enabled = clonePointer(override.Tokens.Enabled)
	}
	if override.Tokens.Model != "" {
		result.Tokens.Model = override.Tokens.Model
	}
	return result
}

func clonePointer[T any](value *T) *T {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
