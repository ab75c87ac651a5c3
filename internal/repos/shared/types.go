package shared

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

const (
	// OriginRemoteNameConstant identifies the default remote configured for a project.
	OriginRemoteNameConstant = "origin"

	repositoryPathRequiredMessageConstant = "repository path must be provided"
	repositoryPathLineBreakTemplate       = "repository path %q must not contain line breaks"
	remoteNameRequiredMessageConstant     = "remote names must be non-empty"
	remoteNameInvalidTemplateConstant     = "remote name %q must not contain whitespace"
	remoteURLRequiredTemplateConstant     = "please set 'remotes.%s.url'"
	lineBreakCharactersConstant           = "\r\n"
)

// ErrRemoteURLMissing indicates that a remote entry was supplied without a URL.
var ErrRemoteURLMissing = errors.New("remote url missing")

// InputError reports configuration input rejected before any side effect occurs.
type InputError struct {
	Message string
	Cause   error
}

// Error describes the rejected input.
func (inputError InputError) Error() string {
	return inputError.Message
}

// Unwrap exposes the underlying cause.
func (inputError InputError) Unwrap() error {
	return inputError.Cause
}

// RepositoryPath is a validated project root path.
type RepositoryPath struct {
	value string
}

// NewRepositoryPath trims and validates a project root path.
func NewRepositoryPath(raw string) (RepositoryPath, error) {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) == 0 {
		return RepositoryPath{}, InputError{Message: repositoryPathRequiredMessageConstant}
	}
	if strings.ContainsAny(trimmed, lineBreakCharactersConstant) {
		return RepositoryPath{}, InputError{Message: fmt.Sprintf(repositoryPathLineBreakTemplate, trimmed)}
	}
	return RepositoryPath{value: trimmed}, nil
}

// String returns the path.
func (repositoryPath RepositoryPath) String() string {
	return repositoryPath.value
}

// RemoteSpec maps remote names to the URL each should point at.
type RemoteSpec map[string]string

// Validate rejects empty names and blank URLs.
func (spec RemoteSpec) Validate() error {
	for _, remoteName := range spec.Names() {
		if len(strings.TrimSpace(remoteName)) == 0 {
			return InputError{Message: remoteNameRequiredMessageConstant}
		}
		if strings.ContainsAny(remoteName, " \t"+lineBreakCharactersConstant) {
			return InputError{Message: fmt.Sprintf(remoteNameInvalidTemplateConstant, remoteName)}
		}
		if len(strings.TrimSpace(spec[remoteName])) == 0 {
			return InputError{Message: fmt.Sprintf(remoteURLRequiredTemplateConstant, remoteName), Cause: ErrRemoteURLMissing}
		}
	}
	return nil
}

// Names returns the remote names in lexicographic order.
func (spec RemoteSpec) Names() []string {
	names := make([]string, 0, len(spec))
	for remoteName := range spec {
		names = append(names, remoteName)
	}
	sort.Strings(names)
	return names
}

// Merge returns a copy of spec with overrides applied on top.
func (spec RemoteSpec) Merge(overrides RemoteSpec) RemoteSpec {
	merged := make(RemoteSpec, len(spec)+len(overrides))
	for remoteName, remoteURL := range spec {
		merged[remoteName] = remoteURL
	}
	for remoteName, remoteURL := range overrides {
		merged[remoteName] = remoteURL
	}
	return merged
}

// RemoteChange records the effect of configuring one remote.
type RemoteChange struct {
	Name        string
	PreviousURL string
	URL         string
}

// Changed reports whether the stored URL differs from the desired one.
func (change RemoteChange) Changed() bool {
	return change.PreviousURL != change.URL
}

// PlanRemoteChanges compares the currently configured URLs with the desired spec.
func PlanRemoteChanges(currentURLs map[string][]string, spec RemoteSpec) []RemoteChange {
	changes := make([]RemoteChange, 0, len(spec))
	for _, remoteName := range spec.Names() {
		change := RemoteChange{Name: remoteName, URL: spec[remoteName]}
		existingURLs := currentURLs[remoteName]
		if len(existingURLs) == 1 {
			change.PreviousURL = existingURLs[0]
		} else if len(existingURLs) > 1 {
			change.PreviousURL = strings.Join(existingURLs, ",")
		}
		changes = append(changes, change)
	}
	return changes
}

// RepositoryInspection describes a project root without modifying it.
type RepositoryInspection struct {
	Exists     bool
	RemoteURLs map[string][]string
}

// RepositoryHandle is an open repository whose configuration can be changed.
type RepositoryHandle interface {
	Path() string
	Created() bool
	SetRemotes(executionContext context.Context, spec RemoteSpec) ([]RemoteChange, error)
	Close() error
}

// RepositoryManager opens or creates repositories rooted at a project directory.
type RepositoryManager interface {
	EnsureRepository(executionContext context.Context, repositoryPath string) (RepositoryHandle, error)
	InspectRepository(executionContext context.Context, repositoryPath string) (RepositoryInspection, error)
}

// FileSystem exposes filesystem operations required by repository services.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	Abs(path string) (string, error)
}
