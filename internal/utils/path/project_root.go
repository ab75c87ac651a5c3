package pathutils

import (
	"path/filepath"
	"strings"
)

// DefaultProjectRootConstant is used when neither arguments nor configuration name a project root.
const DefaultProjectRootConstant = "."

// ProjectRootResolver picks the project root from command arguments and configuration.
type ProjectRootResolver struct {
	homeExpander *HomeExpander
}

// NewProjectRootResolver constructs a resolver expanding home shortcuts through expander.
func NewProjectRootResolver(expander *HomeExpander) ProjectRootResolver {
	if expander == nil {
		expander = NewHomeExpander()
	}
	return ProjectRootResolver{homeExpander: expander}
}

// Resolve returns the first non-blank argument, else the configured root, else the current directory.
func (resolver ProjectRootResolver) Resolve(arguments []string, configuredRoot string) string {
	for _, argument := range arguments {
		if candidate := strings.TrimSpace(argument); len(candidate) > 0 {
			return resolver.normalize(candidate)
		}
	}
	if candidate := strings.TrimSpace(configuredRoot); len(candidate) > 0 {
		return resolver.normalize(candidate)
	}
	return DefaultProjectRootConstant
}

func (resolver ProjectRootResolver) normalize(candidate string) string {
	return filepath.Clean(resolver.homeExpander.Expand(candidate))
}
