// Package config loads fsmcp defaults from global and local YAML files.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/temirov/fsmcp/internal/utils"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds command-specific configuration defaults.
// Pointer fields stay nil when a file does not mention them.
type ApplicationConfiguration struct {
	LogLevel string             `mapstructure:"log_level" yaml:"log_level,omitempty"`
	Tree     TreeConfiguration  `mapstructure:"tree" yaml:"tree"`
	Serve    ServeConfiguration `mapstructure:"serve" yaml:"serve"`
}

// TreeConfiguration defines defaults for the tree command and the folder structure tool.
type TreeConfiguration struct {
	Format    string             `mapstructure:"format" yaml:"format,omitempty"`
	Recursive *bool              `mapstructure:"recursive" yaml:"recursive,omitempty"`
	Color     *bool              `mapstructure:"color" yaml:"color,omitempty"`
	Clipboard *bool              `mapstructure:"clipboard" yaml:"clipboard,omitempty"`
	Tokens    TokenConfiguration `mapstructure:"tokens" yaml:"tokens"`
	Paths     PathConfiguration  `mapstructure:"paths" yaml:"paths"`
}

// TokenConfiguration controls token counting defaults.
type TokenConfiguration struct {
	Enabled *bool  `mapstructure:"enabled" yaml:"enabled,omitempty"`
	Model   string `mapstructure:"model" yaml:"model,omitempty"`
}

// PathConfiguration lists exclusion patterns applied at every traversal root.
type PathConfiguration struct {
	Exclude []string `mapstructure:"exclude" yaml:"exclude"`
}

// ServeConfiguration defines defaults for the serve command.
type ServeConfiguration struct {
	Transport string   `mapstructure:"transport" yaml:"transport,omitempty"`
	Address   string   `mapstructure:"address" yaml:"address,omitempty"`
	Allow     []string `mapstructure:"allow" yaml:"allow"`
}

// GlobalConfigurationPath returns the XDG location of the global configuration file.
func GlobalConfigurationPath() string {
	return filepath.Join(xdg.ConfigHome, utils.ApplicationName, utils.GlobalConfigFileName)
}

// LoadApplicationConfiguration loads configuration from global and local files.
// Local values override global ones.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	globalConfig, loadErr := loadConfigurationFromPath(GlobalConfigurationPath())
	if loadErr != nil {
		return ApplicationConfiguration{}, loadErr
	}
	merged := ApplicationConfiguration{}.Merge(globalConfig)

	localPath, resolveErr := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveErr != nil {
		return ApplicationConfiguration{}, resolveErr
	}
	if options.ExplicitFilePath != "" {
		if _, statErr := os.Stat(localPath); statErr != nil {
			return ApplicationConfiguration{}, fmt.Errorf("configuration file %s: %w", localPath, statErr)
		}
	}
	localConfig, loadErr := loadConfigurationFromPath(localPath)
	if loadErr != nil {
		return ApplicationConfiguration{}, loadErr
	}
	merged = merged.Merge(localConfig)

	merged.Tree.Paths.Exclude = utils.DeduplicatePatterns(merged.Tree.Paths.Exclude)
	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		if workingDirectory == "" {
			absolute, err := filepath.Abs(explicitPath)
			if err != nil {
				return "", fmt.Errorf("resolve configuration path %s: %w", explicitPath, err)
			}
			return absolute, nil
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	return filepath.Join(workingDirectory, utils.ConfigFileName), nil
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
	if override.LogLevel != "" {
		result.LogLevel = override.LogLevel
	}
	result.Tree = result.Tree.merge(override.Tree)
	result.Serve = result.Serve.merge(override.Serve)
	return result
}

func (config TreeConfiguration) merge(override TreeConfiguration) TreeConfiguration {
	result := config
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Recursive != nil {
		result.Recursive = cloneBool(override.Recursive)
	}
	if override.Color != nil {
		result.Color = cloneBool(override.Color)
	}
	if override.Clipboard != nil {
		result.Clipboard = cloneBool(override.Clipboard)
	}
	result.Tokens = result.Tokens.merge(override.Tokens)
	result.Paths = result.Paths.merge(override.Paths)
	return result
}

func (config TokenConfiguration) merge(override TokenConfiguration) TokenConfiguration {
	result := config
	if override.Enabled != nil {
		result.Enabled = cloneBool(override.Enabled)
	}
	if override.Model != "" {
		result.Model = override.Model
	}
	return result
}

func (config PathConfiguration) merge(override PathConfiguration) PathConfiguration {
	result := config
	if len(override.Exclude) > 0 {
		result.Exclude = append([]string{}, utils.DeduplicatePatterns(override.Exclude)...)
	}
	return result
}

func (config ServeConfiguration) merge(override ServeConfiguration) ServeConfiguration {
	result := config
	if override.Transport != "" {
		result.Transport = override.Transport
	}
	if override.Address != "" {
		result.Address = override.Address
	}
	if len(override.Allow) > 0 {
		result.Allow = append([]string{}, override.Allow...)
	}
	return result
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
