package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/temirov/fsmcp/internal/tokenizer"
	"github.com/temirov/fsmcp/internal/types"
	"github.com/temirov/fsmcp/internal/utils"
)

// InitTarget identifies where configuration should be initialized.
type InitTarget string

const (
	// InitTargetLocal writes configuration into the working directory.
	InitTargetLocal InitTarget = "local"
	// InitTargetGlobal writes configuration into the XDG configuration directory.
	InitTargetGlobal InitTarget = "global"

	// DefaultServeAddress is the HTTP listen address used when none is configured.
	DefaultServeAddress = "127.0.0.1:8765"

	configurationFileMode = 0o600
	yamlIndentation       = 2
)

// InitOptions controls how configuration initialization behaves.
type InitOptions struct {
	Target           InitTarget
	Force            bool
	WorkingDirectory string
}

// DefaultConfiguration returns the configuration written by InitializeConfiguration.
func DefaultConfiguration() ApplicationConfiguration {
	enabled := true
	disabled := false
	return ApplicationConfiguration{
		LogLevel: utils.DefaultLogLevel,
		Tree: TreeConfiguration{
			Format:    types.FormatYAML,
			Recursive: &enabled,
			Color:     &enabled,
			Clipboard: &disabled,
			Tokens: TokenConfiguration{
				Enabled: &disabled,
				Model:   tokenizer.DefaultModel,
			},
			Paths: PathConfiguration{Exclude: []string{}},
		},
		Serve: ServeConfiguration{
			Transport: types.TransportStdio,
			Address:   DefaultServeAddress,
			Allow:     []string{},
		},
	}
}

// RenderDefaultConfiguration encodes DefaultConfiguration as YAML.
func RenderDefaultConfiguration() ([]byte, error) {
	var rendered bytes.Buffer
	encoder := yaml.NewEncoder(&rendered)
	encoder.SetIndent(yamlIndentation)
	if encodeErr := encoder.Encode(DefaultConfiguration()); encodeErr != nil {
		return nil, fmt.Errorf("render default configuration: %w", encodeErr)
	}
	if closeErr := encoder.Close(); closeErr != nil {
		return nil, fmt.Errorf("render default configuration: %w", closeErr)
	}
	return rendered.Bytes(), nil
}

// InitializeConfiguration writes the default configuration to the requested target
// and returns the written path.
func InitializeConfiguration(options InitOptions) (string, error) {
	target := options.Target
	if target == "" {
		target = InitTargetLocal
	}
	var destinationPath string
	switch target {
	case InitTargetLocal:
		workingDirectory := options.WorkingDirectory
		if workingDirectory == "" {
			current, err := os.Getwd()
			if err != nil {
				return "", fmt.Errorf("determine working directory for configuration: %w", err)
			}
			workingDirectory = current
		}
		destinationPath = filepath.Join(workingDirectory, utils.ConfigFileName)
	case InitTargetGlobal:
		globalPath, err := xdg.ConfigFile(filepath.Join(utils.ApplicationName, utils.GlobalConfigFileName))
		if err != nil {
			return "", fmt.Errorf("create global configuration directory: %w", err)
		}
		destinationPath = globalPath
	default:
		return "", fmt.Errorf("unsupported init target %q", target)
	}

	if _, err := os.Stat(destinationPath); err == nil {
		if !options.Force {
			return "", fmt.Errorf("configuration file already exists at %s", destinationPath)
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("inspect configuration path %s: %w", destinationPath, err)
	}

	rendered, renderErr := RenderDefaultConfiguration()
	if renderErr != nil {
		return "", renderErr
	}
	if err := os.WriteFile(destinationPath, rendered, configurationFileMode); err != nil {
		return "", fmt.Errorf("write configuration to %s: %w", destinationPath, err)
	}

	return destinationPath, nil
}
