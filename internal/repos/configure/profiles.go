package configure

import (
	"fmt"
	"sort"
	"strings"

	"github.com/temirov/repoinit/internal/repos/shared"
)

const (
	// JavaProfileNameConstant selects the ignore patterns used by Java projects.
	JavaProfileNameConstant = "java"

	checkstyleIgnorePatternConstant = "/.checkstyle"
	unknownProfileErrorTemplate     = "unknown ignore profile %q (known profiles: %s)"
	profileListSeparatorConstant    = ", "
)

var ignoreProfiles = map[string][]string{
	JavaProfileNameConstant: {checkstyleIgnorePatternConstant},
}

// KnownIgnoreProfiles lists the built-in ignore profile names in lexicographic order.
func KnownIgnoreProfiles() []string {
	profileNames := make([]string, 0, len(ignoreProfiles))
	for profileName := range ignoreProfiles {
		profileNames = append(profileNames, profileName)
	}
	sort.Strings(profileNames)
	return profileNames
}

// ResolveIgnorePatterns expands profile names into their patterns and merges explicit patterns.
// Profile names are matched case-insensitively.
func ResolveIgnorePatterns(profileNames []string, explicitPatterns []string) ([]string, error) {
	resolvedPatterns := make([]string, 0, len(explicitPatterns))
	for _, profileName := range profileNames {
		normalizedName := strings.ToLower(strings.TrimSpace(profileName))
		if len(normalizedName) == 0 {
			continue
		}
		profilePatterns, known := ignoreProfiles[normalizedName]
		if !known {
			return nil, shared.InputError{
				Message: fmt.Sprintf(unknownProfileErrorTemplate, profileName, strings.Join(KnownIgnoreProfiles(), profileListSeparatorConstant)),
			}
		}
		resolvedPatterns = append(resolvedPatterns, profilePatterns...)
	}
	resolvedPatterns = append(resolvedPatterns, explicitPatterns...)
	return resolvedPatterns, nil
}
