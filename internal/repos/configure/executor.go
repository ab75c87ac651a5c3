package configure

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/repoinit/internal/gitrepo"
	"github.com/temirov/repoinit/internal/ignorefile"
	"github.com/temirov/repoinit/internal/repos/filesystem"
	"github.com/temirov/repoinit/internal/repos/shared"
)

const (
	planCreateRepositoryMessage     = "PLAN-CREATE-REPOSITORY: %s\n"
	createRepositoryDoneMessage     = "CREATE-REPOSITORY-DONE: %s\n"
	planSetRemoteMessage            = "PLAN-SET-REMOTE: %s %s %s → %s\n"
	setRemoteDoneMessage            = "SET-REMOTE-DONE: %s %s now %s\n"
	setRemoteSkipMessage            = "SET-REMOTE-SKIP: %s %s (already %s)\n"
	planAppendIgnoreMessage         = "PLAN-APPEND-IGNORE: %s %s\n"
	appendIgnoreDoneMessage         = "APPEND-IGNORE-DONE: %s %s\n"
	appendIgnoreSkipMessage         = "APPEND-IGNORE-SKIP: %s (all patterns present)\n"
	absentRemoteURLPlaceholder      = "(none)"
	resolvePathErrorTemplate        = "unable to resolve repository path %s: %w"
	closeRepositoryErrorTemplate    = "unable to release repository %s: %w"
	invalidIgnorePatternTemplate    = "invalid ignore pattern: %v"
	repositoryManagerMissingMessage = "repository manager not configured"
	configurationStartedMessage     = "repository configuration started"
	configurationCompletedMessage   = "repository configuration completed"
	configurationPlannedMessage     = "repository configuration planned"
	logFieldRepositoryPathConstant  = "repository_path"
	logFieldDryRunConstant          = "dry_run"
	logFieldRemoteCountConstant     = "remote_count"
	logFieldIgnorePatternCount      = "ignore_pattern_count"
	logFieldRepositoryCreated       = "repository_created"
	logFieldChangedRemoteCount      = "changed_remote_count"
	logFieldAppendedIgnoreCount     = "appended_ignore_count"
	logFieldIgnoreFileWritten       = "ignore_file_written"
)

// Options configures a single repository configuration run.
type Options struct {
	RepositoryPath string
	Remotes        shared.RemoteSpec
	IgnorePatterns []string
	IgnoreFileName string
	DryRun         bool
}

// Dependencies captures collaborators required to configure a repository.
type Dependencies struct {
	RepositoryManager        shared.RepositoryManager
	FileSystem               shared.FileSystem
	IgnoreFileSystemProvider filesystem.RootedFileSystemProvider
	Reporter                 shared.Reporter
	Logger                   *zap.Logger
}

// Report summarizes what a run changed, or would change when DryRun is set.
type Report struct {
	RepositoryPath    string
	IgnoreFilePath    string
	DryRun            bool
	RepositoryCreated bool
	RemoteChanges     []shared.RemoteChange
	Ignore            ignorefile.Result
}

// Executor ensures a repository exists, configures its remotes, and reconciles its ignore file.
type Executor struct {
	dependencies Dependencies
}

// NewExecutor constructs an Executor, filling unset dependencies with operating system defaults.
func NewExecutor(dependencies Dependencies) *Executor {
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	if dependencies.FileSystem == nil {
		dependencies.FileSystem = filesystem.OSFileSystem{}
	}
	if dependencies.RepositoryManager == nil {
		dependencies.RepositoryManager = gitrepo.NewRepositoryManager(dependencies.FileSystem, dependencies.Logger)
	}
	if dependencies.IgnoreFileSystemProvider == nil {
		dependencies.IgnoreFileSystemProvider = filesystem.NewRootedFileSystem
	}
	if dependencies.Reporter == nil {
		dependencies.Reporter = shared.NewWriterReporter(nil)
	}
	return &Executor{dependencies: dependencies}
}

// Execute runs the configuration steps in order: repository, remotes, ignore file.
// The first failing step aborts the run.
func (executor *Executor) Execute(executionContext context.Context, options Options) (report Report, resultError error) {
	if executor.dependencies.RepositoryManager == nil {
		return Report{}, errors.New(repositoryManagerMissingMessage)
	}

	repositoryPath, ignorePatterns, validationError := validateOptions(options)
	if validationError != nil {
		return Report{}, validationError
	}

	absolutePath, absError := executor.dependencies.FileSystem.Abs(repositoryPath.String())
	if absError != nil {
		return Report{}, fmt.Errorf(resolvePathErrorTemplate, repositoryPath.String(), absError)
	}

	reconciler := ignorefile.NewReconciler(executor.dependencies.IgnoreFileSystemProvider(absolutePath), options.IgnoreFileName)
	report = Report{
		RepositoryPath: absolutePath,
		IgnoreFilePath: filepath.Join(absolutePath, reconciler.FileName()),
		DryRun:         options.DryRun,
	}

	executor.dependencies.Logger.Info(
		configurationStartedMessage,
		zap.String(logFieldRepositoryPathConstant, absolutePath),
		zap.Bool(logFieldDryRunConstant, options.DryRun),
		zap.Int(logFieldRemoteCountConstant, len(options.Remotes)),
		zap.Int(logFieldIgnorePatternCount, len(ignorePatterns)),
	)

	if options.DryRun {
		return executor.plan(executionContext, report, reconciler, options.Remotes, ignorePatterns)
	}

	handle, ensureError := executor.dependencies.RepositoryManager.EnsureRepository(executionContext, absolutePath)
	if ensureError != nil {
		return Report{}, ensureError
	}
	defer func() {
		if closeError := handle.Close(); closeError != nil && resultError == nil {
			resultError = fmt.Errorf(closeRepositoryErrorTemplate, absolutePath, closeError)
		}
	}()

	report.RepositoryCreated = handle.Created()
	if report.RepositoryCreated {
		executor.dependencies.Reporter.Printf(createRepositoryDoneMessage, absolutePath)
	}

	remoteChanges, remotesError := handle.SetRemotes(executionContext, options.Remotes)
	if remotesError != nil {
		return Report{}, remotesError
	}
	report.RemoteChanges = remoteChanges
	for _, change := range remoteChanges {
		if change.Changed() {
			executor.dependencies.Reporter.Printf(setRemoteDoneMessage, absolutePath, change.Name, change.URL)
			continue
		}
		executor.dependencies.Reporter.Printf(setRemoteSkipMessage, absolutePath, change.Name, change.URL)
	}

	if contextError := executionContext.Err(); contextError != nil {
		return Report{}, contextError
	}

	ignoreResult, ignoreError := reconciler.Reconcile(ignorePatterns)
	if ignoreError != nil {
		return Report{}, ignoreError
	}
	report.Ignore = ignoreResult
	executor.reportIgnoreResult(appendIgnoreDoneMessage, report.IgnoreFilePath, ignorePatterns, ignoreResult)

	executor.dependencies.Logger.Info(
		configurationCompletedMessage,
		zap.String(logFieldRepositoryPathConstant, absolutePath),
		zap.Bool(logFieldRepositoryCreated, report.RepositoryCreated),
		zap.Int(logFieldChangedRemoteCount, countChangedRemotes(remoteChanges)),
		zap.Int(logFieldAppendedIgnoreCount, len(ignoreResult.AppendedLines)),
		zap.Bool(logFieldIgnoreFileWritten, ignoreResult.Written),
	)

	return report, nil
}

func (executor *Executor) plan(executionContext context.Context, report Report, reconciler *ignorefile.Reconciler, remotes shared.RemoteSpec, ignorePatterns []string) (Report, error) {
	inspection, inspectionError := executor.dependencies.RepositoryManager.InspectRepository(executionContext, report.RepositoryPath)
	if inspectionError != nil {
		return Report{}, inspectionError
	}

	report.RepositoryCreated = !inspection.Exists
	if report.RepositoryCreated {
		executor.dependencies.Reporter.Printf(planCreateRepositoryMessage, report.RepositoryPath)
	}

	report.RemoteChanges = shared.PlanRemoteChanges(inspection.RemoteURLs, remotes)
	for _, change := range report.RemoteChanges {
		if !change.Changed() {
			executor.dependencies.Reporter.Printf(setRemoteSkipMessage, report.RepositoryPath, change.Name, change.URL)
			continue
		}
		previousURL := change.PreviousURL
		if len(previousURL) == 0 {
			previousURL = absentRemoteURLPlaceholder
		}
		executor.dependencies.Reporter.Printf(planSetRemoteMessage, report.RepositoryPath, change.Name, previousURL, change.URL)
	}

	ignoreResult, ignoreError := reconciler.Plan(ignorePatterns)
	if ignoreError != nil {
		return Report{}, ignoreError
	}
	report.Ignore = ignoreResult
	executor.reportIgnoreResult(planAppendIgnoreMessage, report.IgnoreFilePath, ignorePatterns, ignoreResult)

	executor.dependencies.Logger.Info(
		configurationPlannedMessage,
		zap.String(logFieldRepositoryPathConstant, report.RepositoryPath),
		zap.Bool(logFieldRepositoryCreated, report.RepositoryCreated),
		zap.Int(logFieldChangedRemoteCount, countChangedRemotes(report.RemoteChanges)),
		zap.Int(logFieldAppendedIgnoreCount, len(ignoreResult.AppendedLines)),
	)

	return report, nil
}

func (executor *Executor) reportIgnoreResult(appendTemplate string, ignoreFilePath string, ignorePatterns []string, result ignorefile.Result) {
	if len(ignorePatterns) == 0 {
		return
	}
	if len(result.AppendedLines) == 0 {
		executor.dependencies.Reporter.Printf(appendIgnoreSkipMessage, ignoreFilePath)
		return
	}
	for _, appendedLine := range result.AppendedLines {
		executor.dependencies.Reporter.Printf(appendTemplate, ignoreFilePath, appendedLine)
	}
}

// Execute performs a configuration run using transient executor state.
func Execute(executionContext context.Context, dependencies Dependencies, options Options) (Report, error) {
	return NewExecutor(dependencies).Execute(executionContext, options)
}

func validateOptions(options Options) (shared.RepositoryPath, []string, error) {
	repositoryPath, pathError := shared.NewRepositoryPath(options.RepositoryPath)
	if pathError != nil {
		return shared.RepositoryPath{}, nil, pathError
	}

	if remotesError := options.Remotes.Validate(); remotesError != nil {
		return shared.RepositoryPath{}, nil, remotesError
	}

	ignorePatterns, patternsError := ignorefile.NormalizePatterns(options.IgnorePatterns)
	if patternsError != nil {
		return shared.RepositoryPath{}, nil, shared.InputError{
			Message: fmt.Sprintf(invalidIgnorePatternTemplate, patternsError),
			Cause:   patternsError,
		}
	}

	return repositoryPath, ignorePatterns, nil
}

func countChangedRemotes(changes []shared.RemoteChange) int {
	changedCount := 0
	for _, change := range changes {
		if change.Changed() {
			changedCount++
		}
	}
	return changedCount
}
