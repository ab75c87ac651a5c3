package repos

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/repoinit/internal/repos/shared"
	pathutils "github.com/temirov/repoinit/internal/utils/path"
)

const (
	remoteAssignmentSeparatorConstant = "="
	invalidRemoteAssignmentTemplate   = "invalid --remote value %q: expected name=url"
)

var repositoryRootResolver = pathutils.NewProjectRootResolver(pathutils.NewHomeExpander())

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// parseRemoteAssignments converts name=url pairs into a RemoteSpec. Later pairs win for repeated names.
// An assignment with an empty URL is kept so validation can report the missing URL.
func parseRemoteAssignments(assignments []string) (shared.RemoteSpec, error) {
	spec := make(shared.RemoteSpec, len(assignments))
	for _, assignment := range assignments {
		remoteName, remoteURL, found := strings.Cut(assignment, remoteAssignmentSeparatorConstant)
		remoteName = strings.TrimSpace(remoteName)
		if !found || len(remoteName) == 0 {
			return nil, shared.InputError{Message: fmt.Sprintf(invalidRemoteAssignmentTemplate, assignment)}
		}
		spec[remoteName] = strings.TrimSpace(remoteURL)
	}
	return spec, nil
}
