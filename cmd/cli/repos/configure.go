package repos

import (
	"github.com/spf13/cobra"

	"github.com/temirov/repoinit/internal/repos/configure"
	"github.com/temirov/repoinit/internal/repos/filesystem"
	"github.com/temirov/repoinit/internal/repos/shared"
	flagutils "github.com/temirov/repoinit/internal/utils/flags"
)

const (
	configureUseConstant             = "repo-configure [root]"
	configureShortDescription        = "Ensure a git repository with the requested remotes and ignore patterns"
	configureLongDescription         = "repo-configure opens or creates the git repository rooted at the project directory, points every requested remote at its URL, and appends missing patterns to the root ignore file."
	remoteFlagNameConstant           = "remote"
	remoteFlagUsageConstant          = "Remote to configure as name=url (repeatable, overrides configuration per name)"
	ignoreFlagNameConstant           = "ignore"
	ignoreFlagUsageConstant          = "Ignore pattern to require (repeatable, merged with configuration)"
	profileFlagNameConstant          = "profile"
	profileFlagUsageConstant         = "Built-in ignore profile to apply (repeatable)"
	ignoreFileFlagNameConstant       = "ignore-file"
	ignoreFileFlagUsageConstant      = "Ignore file name relative to the project root"
	maximumPositionalArgumentsAmount = 1
)

// ConfigureCommandBuilder assembles the repo-configure command.
type ConfigureCommandBuilder struct {
	LoggerProvider           LoggerProvider
	RepositoryManager        shared.RepositoryManager
	FileSystem               shared.FileSystem
	IgnoreFileSystemProvider filesystem.RootedFileSystemProvider
	ConfigurationProvider    func() ConfigureConfiguration
}

// Build constructs the repo-configure command.
func (builder *ConfigureCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   configureUseConstant,
		Short: configureShortDescription,
		Long:  configureLongDescription,
		Args:  cobra.MaximumNArgs(maximumPositionalArgumentsAmount),
		RunE:  builder.run,
	}

	flagutils.BindExecutionFlags(command, flagutils.ExecutionDefaults{}, flagutils.ExecutionFlagDefinitions{
		DryRun: flagutils.ExecutionFlagDefinition{Name: flagutils.DryRunFlagName, Usage: flagutils.DryRunFlagUsage, Enabled: true},
	})
	flagutils.BindRepeatableFlag(command, flagutils.RepeatableFlagDefinition{Name: remoteFlagNameConstant, Usage: remoteFlagUsageConstant, Enabled: true})
	flagutils.BindRepeatableFlag(command, flagutils.RepeatableFlagDefinition{Name: ignoreFlagNameConstant, Usage: ignoreFlagUsageConstant, Enabled: true})
	flagutils.BindRepeatableFlag(command, flagutils.RepeatableFlagDefinition{
		Name:    profileFlagNameConstant,
		Usage:   ignoreProfileChoices().Usage(profileFlagUsageConstant),
		Enabled: true,
	})
	command.Flags().String(ignoreFileFlagNameConstant, "", ignoreFileFlagUsageConstant)

	return command, nil
}

func (builder *ConfigureCommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()

	dryRun := configuration.DryRun
	if executionFlags, executionFlagsAvailable := flagutils.ResolveExecutionFlags(command); executionFlagsAvailable && executionFlags.DryRunSet {
		dryRun = executionFlags.DryRun
	}

	remoteOverrides, remoteParseError := parseRemoteAssignments(flagutils.RepeatableFlagValues(command, remoteFlagNameConstant))
	if remoteParseError != nil {
		return remoteParseError
	}
	remoteSpec := configuration.RemoteSpec().Merge(remoteOverrides)

	profileFlagValues, profileFlagError := flagutils.ResolveFlagChoices(profileFlagNameConstant, ignoreProfileChoices(), flagutils.RepeatableFlagValues(command, profileFlagNameConstant))
	if profileFlagError != nil {
		return shared.InputError{Message: profileFlagError.Error(), Cause: profileFlagError}
	}
	profiles := append(append([]string{}, configuration.Profiles...), profileFlagValues...)
	explicitPatterns := append(append([]string{}, configuration.IgnorePatterns...), flagutils.RepeatableFlagValues(command, ignoreFlagNameConstant)...)
	ignorePatterns, profileError := configure.ResolveIgnorePatterns(profiles, explicitPatterns)
	if profileError != nil {
		return profileError
	}

	ignoreFileName := configuration.IgnoreFileName
	if ignoreFileFlag := command.Flags().Lookup(ignoreFileFlagNameConstant); ignoreFileFlag != nil && ignoreFileFlag.Changed {
		ignoreFileName = ignoreFileFlag.Value.String()
	}

	dependencies := configure.Dependencies{
		RepositoryManager:        builder.RepositoryManager,
		FileSystem:               builder.FileSystem,
		IgnoreFileSystemProvider: builder.IgnoreFileSystemProvider,
		Reporter:                 shared.NewWriterReporter(command.OutOrStdout()),
		Logger:                   resolveLogger(builder.LoggerProvider),
	}
	options := configure.Options{
		RepositoryPath: repositoryRootResolver.Resolve(arguments, configuration.RepositoryRoot),
		Remotes:        remoteSpec,
		IgnorePatterns: ignorePatterns,
		IgnoreFileName: ignoreFileName,
		DryRun:         dryRun,
	}

	_, executionError := configure.Execute(command.Context(), dependencies, options)
	return executionError
}

func ignoreProfileChoices() flagutils.ChoiceSet {
	return flagutils.NewChoiceSet("", configure.KnownIgnoreProfiles()...)
}

func (builder *ConfigureCommandBuilder) resolveConfiguration() ConfigureConfiguration {
	if builder.ConfigurationProvider == nil {
		defaults := DefaultToolsConfiguration()
		return defaults.Configure
	}

	provided := builder.ConfigurationProvider()
	return provided.Sanitize()
}
