package cli_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-git/v5"
	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/repoinit/cmd/cli"
	repos "github.com/temirov/repoinit/cmd/cli/repos"
)

const (
	testConfigurationFileNameConstant = "config.yaml"
	testConfigureCommandNameConstant  = "repo-configure"
	testOriginURLConstant             = "git@github.com:owner/project.git"
	testForkURLConstant               = "git@github.com:fork/project.git"
	testProjectDirectoryConstant      = "project"
	testQuietLogLevelArgument         = "--log-level=error"
	testApplicationSubtestTemplate    = "%d_%s"
	testConfigurationTemplateConstant = `common:
  log_level: error
tools:
  repos:
    configure:
      root: %s
      remotes:
        origin:
          url: %s
      ignores:
        - "build/"
        - "notes#draft"
      profiles:
        - java
`
)

type applicationRunResult struct {
	output         string
	executionError error
}

func runApplication(testInstance *testing.T, arguments ...string) applicationRunResult {
	testInstance.Helper()

	application := cli.NewApplicationWithSearchPaths([]string{testInstance.TempDir()})
	outputBuffer := &bytes.Buffer{}
	application.RootCommand().SetOut(outputBuffer)
	application.RootCommand().SetErr(outputBuffer)
	application.SetArguments(arguments)

	executionError := application.Execute()
	return applicationRunResult{output: outputBuffer.String(), executionError: executionError}
}

func writeConfigurationFile(testInstance *testing.T, directory string, content string) string {
	testInstance.Helper()
	configurationPath := filepath.Join(directory, testConfigurationFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(content), 0o600))
	return configurationPath
}

func TestEmbeddedDefaultConfigurationDecodes(testInstance *testing.T) {
	configurationData, configurationType := cli.EmbeddedDefaultConfiguration()
	require.Equal(testInstance, "yaml", configurationType)

	var document map[string]any
	require.NoError(testInstance, yaml.Unmarshal(configurationData, &document))

	var configuration cli.ApplicationConfiguration
	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "mapstructure", Result: &configuration})
	require.NoError(testInstance, decoderError)
	require.NoError(testInstance, decoder.Decode(document))

	require.Equal(testInstance, "info", configuration.Common.LogLevel)
	require.Equal(testInstance, "structured", configuration.Common.LogFormat)

	configure := configuration.Tools.Repos.Configure.Sanitize()
	defaults := repos.DefaultToolsConfiguration().Configure
	require.Equal(testInstance, defaults.RepositoryRoot, configure.RepositoryRoot)
	require.Equal(testInstance, defaults.IgnoreFileName, configure.IgnoreFileName)
	require.False(testInstance, configure.DryRun)
	require.Empty(testInstance, configure.Remotes)
	require.Empty(testInstance, configure.IgnorePatterns)
	require.Empty(testInstance, configure.Profiles)
}

func TestApplicationConfiguresRepositoryFromConfigurationFile(testInstance *testing.T) {
	workspace := testInstance.TempDir()
	projectRoot := filepath.Join(workspace, testProjectDirectoryConstant)
	configurationPath := writeConfigurationFile(testInstance, workspace, fmt.Sprintf(testConfigurationTemplateConstant, projectRoot, testOriginURLConstant))

	firstRun := runApplication(testInstance, testConfigureCommandNameConstant, "--config", configurationPath)
	require.NoError(testInstance, firstRun.executionError)
	require.Contains(testInstance, firstRun.output, "CREATE-REPOSITORY-DONE: "+projectRoot)
	require.Contains(testInstance, firstRun.output, "SET-REMOTE-DONE: "+projectRoot+" origin now "+testOriginURLConstant)

	openedRepository, openError := git.PlainOpen(projectRoot)
	require.NoError(testInstance, openError)
	repositoryConfiguration, configError := openedRepository.Config()
	require.NoError(testInstance, configError)
	require.Equal(testInstance, []string{testOriginURLConstant}, repositoryConfiguration.Remotes["origin"].URLs)

	ignoreContent, readError := os.ReadFile(filepath.Join(projectRoot, ".gitignore"))
	require.NoError(testInstance, readError)
	require.Equal(testInstance, "/.checkstyle\nbuild/\nnotes\\#draft\n", string(ignoreContent))

	secondRun := runApplication(testInstance, testConfigureCommandNameConstant, "--config", configurationPath)
	require.NoError(testInstance, secondRun.executionError)
	require.NotContains(testInstance, secondRun.output, "DONE")
	require.Contains(testInstance, secondRun.output, "APPEND-IGNORE-SKIP")
}

func TestApplicationKeepsConfiguredRemoteNameCase(testInstance *testing.T) {
	workspace := testInstance.TempDir()
	projectRoot := filepath.Join(workspace, testProjectDirectoryConstant)
	configurationContent := fmt.Sprintf(
		"common:\n  log_level: error\ntools:\n  repos:\n    configure:\n      root: %s\n      remotes:\n        Upstream:\n          url: %s\n        fork:\n          name: MyFork\n          url: %s\n",
		projectRoot,
		testOriginURLConstant,
		testForkURLConstant,
	)
	configurationPath := writeConfigurationFile(testInstance, workspace, configurationContent)

	result := runApplication(testInstance, testConfigureCommandNameConstant, "--config", configurationPath)
	require.NoError(testInstance, result.executionError)

	openedRepository, openError := git.PlainOpen(projectRoot)
	require.NoError(testInstance, openError)
	repositoryConfiguration, configError := openedRepository.Config()
	require.NoError(testInstance, configError)
	require.Len(testInstance, repositoryConfiguration.Remotes, 2)
	require.Equal(testInstance, []string{testOriginURLConstant}, repositoryConfiguration.Remotes["upstream"].URLs)
	require.Equal(testInstance, []string{testForkURLConstant}, repositoryConfiguration.Remotes["MyFork"].URLs)
}

func TestApplicationEnvironmentOverridesConfiguration(testInstance *testing.T) {
	projectRoot := filepath.Join(testInstance.TempDir(), testProjectDirectoryConstant)
	testInstance.Setenv("REPOINIT_TOOLS_REPOS_CONFIGURE_ROOT", projectRoot)
	testInstance.Setenv("REPOINIT_TOOLS_REPOS_CONFIGURE_IGNORES", "*.log,dist/")
	testInstance.Setenv("REPOINIT_TOOLS_REPOS_CONFIGURE_DRY_RUN", "true")

	result := runApplication(testInstance, testConfigureCommandNameConstant, testQuietLogLevelArgument)
	require.NoError(testInstance, result.executionError)
	require.Contains(testInstance, result.output, "PLAN-CREATE-REPOSITORY: "+projectRoot)
	require.Contains(testInstance, result.output, "PLAN-APPEND-IGNORE: "+filepath.Join(projectRoot, ".gitignore")+" *.log")
	require.Contains(testInstance, result.output, "PLAN-APPEND-IGNORE: "+filepath.Join(projectRoot, ".gitignore")+" dist/")

	_, statError := os.Stat(projectRoot)
	require.True(testInstance, os.IsNotExist(statError))
}

func TestApplicationReportsFailures(testInstance *testing.T) {
	testCases := []struct {
		name            string
		configuration   string
		arguments       func(configurationPath string, projectRoot string) []string
		expectedMessage string
	}{
		{
			name:          "remote_without_url",
			configuration: "tools:\n  repos:\n    configure:\n      remotes:\n        origin:\n          url: \"\"\n",
			arguments: func(configurationPath string, projectRoot string) []string {
				return []string{testConfigureCommandNameConstant, projectRoot, "--config", configurationPath, testQuietLogLevelArgument}
			},
			expectedMessage: "please set 'remotes.origin.url'",
		},
		{
			name:          "unsupported_log_level",
			configuration: "common:\n  log_level: verbose\n",
			arguments: func(configurationPath string, projectRoot string) []string {
				return []string{testConfigureCommandNameConstant, projectRoot, "--config", configurationPath}
			},
			expectedMessage: "unsupported log level",
		},
		{
			name:          "unsupported_log_format_flag",
			configuration: "common:\n  log_level: error\n",
			arguments: func(configurationPath string, projectRoot string) []string {
				return []string{testConfigureCommandNameConstant, projectRoot, "--config", configurationPath, "--log-format", "xml"}
			},
			expectedMessage: `invalid --log-format value: unsupported value "xml" (expected one of: structured, console)`,
		},
		{
			name:          "malformed_configuration",
			configuration: "tools: [unterminated\n",
			arguments: func(configurationPath string, projectRoot string) []string {
				return []string{testConfigureCommandNameConstant, projectRoot, "--config", configurationPath}
			},
			expectedMessage: "unable to load configuration",
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testApplicationSubtestTemplate, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			workspace := testInstance.TempDir()
			projectRoot := filepath.Join(workspace, testProjectDirectoryConstant)
			configurationPath := writeConfigurationFile(testInstance, workspace, testCase.configuration)

			result := runApplication(testInstance, testCase.arguments(configurationPath, projectRoot)...)
			require.Error(testInstance, result.executionError)
			require.True(testInstance, strings.Contains(result.executionError.Error(), testCase.expectedMessage), result.executionError.Error())

			_, statError := os.Stat(projectRoot)
			require.True(testInstance, os.IsNotExist(statError))
		})
	}
}

func TestApplicationRootCommandPrintsHelp(testInstance *testing.T) {
	result := runApplication(testInstance, testQuietLogLevelArgument)
	require.NoError(testInstance, result.executionError)
	require.Contains(testInstance, result.output, testConfigureCommandNameConstant)
}
