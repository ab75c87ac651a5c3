package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	formatconfig "github.com/go-git/go-git/v5/plumbing/format/config"
	"go.uber.org/zap"

	"github.com/temirov/repoinit/internal/repos/filesystem"
	"github.com/temirov/repoinit/internal/repos/shared"
)

const (
	repositoryMetadataDirectoryConstant    = git.GitDirName
	repositoryLookupErrorTemplateConstant  = "unable to inspect repository metadata in %s: %w"
	repositoryOpenErrorTemplateConstant    = "unable to open repository %s: %w"
	repositoryCreateErrorTemplateConstant  = "unable to create repository %s: %w"
	repositoryConfigReadErrorTemplate      = "unable to read configuration of repository %s: %w"
	repositoryConfigSaveErrorTemplate      = "unable to save configuration of repository %s: %w"
	repositoryCloseErrorTemplateConstant   = "unable to close repository %s: %w"
	repositoryOpenedMessageConstant        = "repository opened"
	repositoryCreatedMessageConstant       = "repository created"
	remoteConfiguredMessageConstant        = "remote configured"
	remotesSavedMessageConstant            = "repository configuration saved"
	logFieldRepositoryPathConstant         = "repository_path"
	logFieldRemoteNameConstant             = "remote_name"
	logFieldRemoteURLConstant              = "remote_url"
	logFieldPreviousRemoteURLConstant      = "previous_remote_url"
	logFieldRemoteCountConstant            = "remote_count"
	repositoryManagerNotConfiguredConstant = "repository manager not configured"
)

// RepositoryManager opens and creates repositories using go-git.
type RepositoryManager struct {
	fileSystem shared.FileSystem
	logger     *zap.Logger
}

// Repository is an open repository handle.
type Repository struct {
	path       string
	created    bool
	repository *git.Repository
	logger     *zap.Logger
}

// NewRepositoryManager constructs a RepositoryManager. Nil collaborators fall back to the OS filesystem and a no-op logger.
func NewRepositoryManager(fileSystem shared.FileSystem, logger *zap.Logger) *RepositoryManager {
	if fileSystem == nil {
		fileSystem = filesystem.OSFileSystem{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RepositoryManager{fileSystem: fileSystem, logger: logger}
}

// EnsureRepository opens the repository rooted at repositoryPath, creating it when no metadata directory exists there.
func (manager *RepositoryManager) EnsureRepository(executionContext context.Context, repositoryPath string) (shared.RepositoryHandle, error) {
	if manager == nil {
		return nil, errors.New(repositoryManagerNotConfiguredConstant)
	}
	if contextError := executionContext.Err(); contextError != nil {
		return nil, contextError
	}

	metadataExists, lookupError := manager.metadataExists(repositoryPath)
	if lookupError != nil {
		return nil, lookupError
	}

	if metadataExists {
		openedRepository, openError := git.PlainOpen(repositoryPath)
		if openError != nil {
			return nil, fmt.Errorf(repositoryOpenErrorTemplateConstant, repositoryPath, openError)
		}
		manager.logger.Debug(repositoryOpenedMessageConstant, zap.String(logFieldRepositoryPathConstant, repositoryPath))
		return &Repository{path: repositoryPath, repository: openedRepository, logger: manager.logger}, nil
	}

	createdRepository, initError := git.PlainInit(repositoryPath, false)
	if initError != nil {
		return nil, fmt.Errorf(repositoryCreateErrorTemplateConstant, repositoryPath, initError)
	}
	manager.logger.Info(repositoryCreatedMessageConstant, zap.String(logFieldRepositoryPathConstant, repositoryPath))
	return &Repository{path: repositoryPath, created: true, repository: createdRepository, logger: manager.logger}, nil
}

// InspectRepository reports whether repositoryPath holds a repository and which remote URLs it configures.
func (manager *RepositoryManager) InspectRepository(executionContext context.Context, repositoryPath string) (shared.RepositoryInspection, error) {
	if manager == nil {
		return shared.RepositoryInspection{}, errors.New(repositoryManagerNotConfiguredConstant)
	}
	if contextError := executionContext.Err(); contextError != nil {
		return shared.RepositoryInspection{}, contextError
	}

	metadataExists, lookupError := manager.metadataExists(repositoryPath)
	if lookupError != nil {
		return shared.RepositoryInspection{}, lookupError
	}
	if !metadataExists {
		return shared.RepositoryInspection{Exists: false, RemoteURLs: map[string][]string{}}, nil
	}

	openedRepository, openError := git.PlainOpen(repositoryPath)
	if openError != nil {
		return shared.RepositoryInspection{}, fmt.Errorf(repositoryOpenErrorTemplateConstant, repositoryPath, openError)
	}
	defer closeStorer(openedRepository)

	rawConfiguration, configError := readConfiguration(openedRepository)
	if configError != nil {
		return shared.RepositoryInspection{}, fmt.Errorf(repositoryConfigReadErrorTemplate, repositoryPath, configError)
	}

	return shared.RepositoryInspection{Exists: true, RemoteURLs: storedRemoteURLs(rawConfiguration)}, nil
}

func (manager *RepositoryManager) metadataExists(repositoryPath string) (bool, error) {
	_, statError := manager.fileSystem.Stat(filepath.Join(repositoryPath, repositoryMetadataDirectoryConstant))
	if statError == nil {
		return true, nil
	}
	if errors.Is(statError, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf(repositoryLookupErrorTemplateConstant, repositoryPath, statError)
}

// Path returns the repository working tree root.
func (repository *Repository) Path() string {
	return repository.path
}

// Created reports whether the repository was initialized by this handle.
func (repository *Repository) Created() bool {
	return repository.created
}

// SetRemotes overwrites the URL of every remote in spec and saves the configuration once.
// Remotes absent from spec are left untouched.
func (repository *Repository) SetRemotes(executionContext context.Context, spec shared.RemoteSpec) ([]shared.RemoteChange, error) {
	if validationError := spec.Validate(); validationError != nil {
		return nil, validationError
	}
	if len(spec) == 0 {
		return nil, nil
	}
	if contextError := executionContext.Err(); contextError != nil {
		return nil, contextError
	}

	storedConfiguration, fileError := newConfigurationFile(repository.repository)
	if fileError != nil {
		return nil, fmt.Errorf(repositoryConfigReadErrorTemplate, repository.path, fileError)
	}
	rawConfiguration, configError := storedConfiguration.read()
	if configError != nil {
		return nil, fmt.Errorf(repositoryConfigReadErrorTemplate, repository.path, configError)
	}

	changes := shared.PlanRemoteChanges(storedRemoteURLs(rawConfiguration), spec)
	for _, change := range changes {
		if setError := setStoredRemoteURL(rawConfiguration, change.Name, change.URL); setError != nil {
			return nil, setError
		}

		logFields := append([]zap.Field{
			zap.String(logFieldRepositoryPathConstant, repository.path),
			zap.String(logFieldRemoteNameConstant, change.Name),
			zap.String(logFieldRemoteURLConstant, change.URL),
			zap.String(logFieldPreviousRemoteURLConstant, change.PreviousURL),
		}, DescribeRemoteURL(change.URL)...)
		repository.logger.Debug(remoteConfiguredMessageConstant, logFields...)
	}

	if saveError := storedConfiguration.write(rawConfiguration); saveError != nil {
		return nil, fmt.Errorf(repositoryConfigSaveErrorTemplate, repository.path, saveError)
	}
	repository.logger.Debug(
		remotesSavedMessageConstant,
		zap.String(logFieldRepositoryPathConstant, repository.path),
		zap.Int(logFieldRemoteCountConstant, len(changes)),
	)

	return changes, nil
}

// Close releases resources held by the repository storage.
func (repository *Repository) Close() error {
	if repository == nil || repository.repository == nil {
		return nil
	}
	if closeError := closeStorer(repository.repository); closeError != nil {
		return fmt.Errorf(repositoryCloseErrorTemplateConstant, repository.path, closeError)
	}
	return nil
}

func closeStorer(openedRepository *git.Repository) error {
	closer, closable := openedRepository.Storer.(io.Closer)
	if !closable {
		return nil
	}
	return closer.Close()
}

func readConfiguration(openedRepository *git.Repository) (*formatconfig.Config, error) {
	storedConfiguration, fileError := newConfigurationFile(openedRepository)
	if fileError != nil {
		return nil, fileError
	}
	return storedConfiguration.read()
}
