package repos

import (
	"strings"

	"github.com/temirov/repoinit/internal/ignorefile"
	"github.com/temirov/repoinit/internal/repos/shared"
	pathutils "github.com/temirov/repoinit/internal/utils/path"
)

const (
	configureConfigurationKeyConstant  = "configure"
	configurationRootKeyConstant       = "root"
	configurationDryRunKeyConstant     = "dry_run"
	configurationIgnoreFileKeyConstant = "ignore_file"
	configurationIgnoresKeyConstant    = "ignores"
	configurationProfilesKeyConstant   = "profiles"
	configurationKeySeparatorConstant  = "."
	defaultRepositoryRootConstant      = pathutils.DefaultProjectRootConstant
	defaultIgnoreFileNameConstant      = ignorefile.FileNameConstant
)

// ToolsConfiguration captures repository command configuration sections.
type ToolsConfiguration struct {
	Configure ConfigureConfiguration `mapstructure:"configure"`
}

// RemoteConfiguration describes a single remote entry. Configuration keys are lowercased
// when loaded, so Name carries the exact remote name when it contains upper case letters.
type RemoteConfiguration struct {
	Name string `mapstructure:"name"`
	URL  string `mapstructure:"url"`
}

// ConfigureConfiguration describes configuration values for repo-configure.
type ConfigureConfiguration struct {
	RepositoryRoot string                         `mapstructure:"root"`
	DryRun         bool                           `mapstructure:"dry_run"`
	IgnoreFileName string                         `mapstructure:"ignore_file"`
	Remotes        map[string]RemoteConfiguration `mapstructure:"remotes"`
	IgnorePatterns []string                       `mapstructure:"ignores"`
	Profiles       []string                       `mapstructure:"profiles"`
}

// DefaultToolsConfiguration returns baseline configuration values for repository commands.
func DefaultToolsConfiguration() ToolsConfiguration {
	return ToolsConfiguration{
		Configure: ConfigureConfiguration{
			RepositoryRoot: defaultRepositoryRootConstant,
			DryRun:         false,
			IgnoreFileName: defaultIgnoreFileNameConstant,
			Remotes:        map[string]RemoteConfiguration{},
			IgnorePatterns: []string{},
			Profiles:       []string{},
		},
	}
}

// DefaultConfigurationValues produces Viper defaults for repository commands.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultToolsConfiguration()
	configureKey := rootKey + configurationKeySeparatorConstant + configureConfigurationKeyConstant + configurationKeySeparatorConstant
	return map[string]any{
		configureKey + configurationRootKeyConstant:       defaults.Configure.RepositoryRoot,
		configureKey + configurationDryRunKeyConstant:     defaults.Configure.DryRun,
		configureKey + configurationIgnoreFileKeyConstant: defaults.Configure.IgnoreFileName,
		configureKey + configurationIgnoresKeyConstant:    defaults.Configure.IgnorePatterns,
		configureKey + configurationProfilesKeyConstant:   defaults.Configure.Profiles,
	}
}

// RemoteSpec converts the configured remotes into a RemoteSpec, keyed by the entry name when set
// and by the configuration key otherwise. Blank URLs are kept so validation can report them.
func (configuration ConfigureConfiguration) RemoteSpec() shared.RemoteSpec {
	spec := make(shared.RemoteSpec, len(configuration.Remotes))
	for remoteKey, remoteConfiguration := range configuration.Remotes {
		remoteName := strings.TrimSpace(remoteConfiguration.Name)
		if len(remoteName) == 0 {
			remoteName = strings.TrimSpace(remoteKey)
		}
		spec[remoteName] = strings.TrimSpace(remoteConfiguration.URL)
	}
	return spec
}

// Sanitize normalizes configure configuration values.
func (configuration ConfigureConfiguration) Sanitize() ConfigureConfiguration {
	sanitized := configuration
	sanitized.RepositoryRoot = strings.TrimSpace(configuration.RepositoryRoot)
	if len(sanitized.RepositoryRoot) == 0 {
		sanitized.RepositoryRoot = defaultRepositoryRootConstant
	}
	sanitized.IgnoreFileName = strings.TrimSpace(configuration.IgnoreFileName)
	if len(sanitized.IgnoreFileName) == 0 {
		sanitized.IgnoreFileName = defaultIgnoreFileNameConstant
	}
	sanitized.Profiles = trimValues(configuration.Profiles)
	sanitized.IgnorePatterns = append([]string{}, configuration.IgnorePatterns...)
	sanitized.Remotes = make(map[string]RemoteConfiguration, len(configuration.Remotes))
	for remoteName, remoteConfiguration := range configuration.Remotes {
		sanitized.Remotes[remoteName] = remoteConfiguration
	}
	return sanitized
}

func trimValues(raw []string) []string {
	trimmed := make([]string, 0, len(raw))
	for _, value := range raw {
		candidate := strings.TrimSpace(value)
		if len(candidate) == 0 {
			continue
		}
		trimmed = append(trimmed, candidate)
	}
	return trimmed
}
