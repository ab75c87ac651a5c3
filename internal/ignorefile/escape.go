package ignorefile

import "strings"

const (
	commentPrefixConstant   = "#"
	escapeCharacterConstant = `\`
)

var (
	patternEscaper   = strings.NewReplacer(escapeCharacterConstant, `\\`, commentPrefixConstant, `\#`)
	patternUnescaper = strings.NewReplacer(`\\`, escapeCharacterConstant, `\#`, commentPrefixConstant)
)

// EscapePattern prefixes every '#' and '\' in the pattern with a backslash.
func EscapePattern(pattern string) string {
	return patternEscaper.Replace(pattern)
}

// UnescapePattern collapses a backslash followed by '#' or '\' into the following character.
func UnescapePattern(line string) string {
	return patternUnescaper.Replace(line)
}

// IsComment reports whether the line is a comment once surrounding whitespace is removed.
func IsComment(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), commentPrefixConstant)
}
