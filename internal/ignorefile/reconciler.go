package ignorefile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
)

const (
	// FileNameConstant names the ignore file maintained at the repository root.
	FileNameConstant = ".gitignore"

	lineSeparatorConstant            = "\n"
	carriageReturnConstant           = "\r"
	byteOrderMarkConstant            = "\ufeff"
	ignoreFilePermissionsConstant    = os.FileMode(0o644)
	emptyPatternErrorMessageConstant = "ignore patterns must be non-empty"
	multilinePatternErrorTemplate    = "ignore pattern %q must not contain line breaks"
	ignoreFileReadErrorTemplate      = "unable to read ignore file %s: %w"
	ignoreFileOpenErrorTemplate      = "unable to open ignore file %s for appending: %w"
	ignoreFileWriteErrorTemplate     = "unable to append to ignore file %s: %w"
	ignoreFileCloseErrorTemplate     = "unable to close ignore file %s: %w"
	fileSystemNotConfiguredMessage   = "ignore file system not configured"
)

// ErrEmptyPattern indicates that a required pattern was blank.
var ErrEmptyPattern = errors.New(emptyPatternErrorMessageConstant)

// State captures the raw content of an ignore file.
type State struct {
	Exists          bool
	Lines           []string
	EndsWithNewline bool
}

// Result describes the outcome of a reconciliation.
type Result struct {
	// MissingPatterns lists the unescaped patterns that were not present, in append order.
	MissingPatterns []string
	// AppendedLines lists the escaped lines added to the file.
	AppendedLines []string
	// Written reports whether the file was modified.
	Written bool
}

// Reconciler maintains a single ignore file on a billy filesystem.
type Reconciler struct {
	fileSystem billy.Filesystem
	fileName   string
}

// NewReconciler constructs a Reconciler for the named file. An empty name selects .gitignore.
func NewReconciler(fileSystem billy.Filesystem, fileName string) *Reconciler {
	resolvedFileName := strings.TrimSpace(fileName)
	if len(resolvedFileName) == 0 {
		resolvedFileName = FileNameConstant
	}
	return &Reconciler{fileSystem: fileSystem, fileName: resolvedFileName}
}

// FileName returns the path of the ignore file relative to the filesystem root.
func (reconciler *Reconciler) FileName() string {
	return reconciler.fileName
}

// NormalizePatterns deduplicates and sorts the required patterns.
func NormalizePatterns(patterns []string) ([]string, error) {
	uniquePatterns := make(map[string]struct{}, len(patterns))
	for _, pattern := range patterns {
		if len(strings.TrimSpace(pattern)) == 0 {
			return nil, ErrEmptyPattern
		}
		if strings.ContainsAny(pattern, lineSeparatorConstant+carriageReturnConstant) {
			return nil, fmt.Errorf(multilinePatternErrorTemplate, pattern)
		}
		uniquePatterns[pattern] = struct{}{}
	}

	normalized := make([]string, 0, len(uniquePatterns))
	for pattern := range uniquePatterns {
		normalized = append(normalized, pattern)
	}
	sort.Strings(normalized)
	return normalized, nil
}

// ReadState loads the ignore file, treating a missing file as empty.
func (reconciler *Reconciler) ReadState() (State, error) {
	if reconciler.fileSystem == nil {
		return State{}, errors.New(fileSystemNotConfiguredMessage)
	}

	file, openError := reconciler.fileSystem.Open(reconciler.fileName)
	if openError != nil {
		if errors.Is(openError, os.ErrNotExist) {
			return State{}, nil
		}
		return State{}, fmt.Errorf(ignoreFileReadErrorTemplate, reconciler.fileName, openError)
	}
	defer file.Close()

	content, readError := io.ReadAll(file)
	if readError != nil {
		return State{}, fmt.Errorf(ignoreFileReadErrorTemplate, reconciler.fileName, readError)
	}

	return parseState(string(content)), nil
}

// MissingPatterns returns the required patterns no non-comment line of the state satisfies.
func MissingPatterns(state State, patterns []string) []string {
	remaining := make(map[string]struct{}, len(patterns))
	for _, pattern := range patterns {
		remaining[pattern] = struct{}{}
	}

	for lineIndex, line := range state.Lines {
		comparableLine := strings.TrimSuffix(line, carriageReturnConstant)
		if lineIndex == 0 {
			comparableLine = strings.TrimPrefix(comparableLine, byteOrderMarkConstant)
		}
		if IsComment(comparableLine) {
			continue
		}
		delete(remaining, UnescapePattern(comparableLine))
	}

	missing := make([]string, 0, len(remaining))
	for pattern := range remaining {
		missing = append(missing, pattern)
	}
	sort.Strings(missing)
	return missing
}

// Plan reports what Reconcile would append without touching the filesystem.
func (reconciler *Reconciler) Plan(patterns []string) (Result, error) {
	normalizedPatterns, normalizeError := NormalizePatterns(patterns)
	if normalizeError != nil {
		return Result{}, normalizeError
	}

	state, stateError := reconciler.ReadState()
	if stateError != nil {
		return Result{}, stateError
	}

	missing := MissingPatterns(state, normalizedPatterns)
	return Result{MissingPatterns: missing, AppendedLines: escapePatterns(missing)}, nil
}

// Reconcile appends every missing pattern to the ignore file. The file is left
// untouched, and is not created, when all patterns are already present.
func (reconciler *Reconciler) Reconcile(patterns []string) (Result, error) {
	normalizedPatterns, normalizeError := NormalizePatterns(patterns)
	if normalizeError != nil {
		return Result{}, normalizeError
	}

	state, stateError := reconciler.ReadState()
	if stateError != nil {
		return Result{}, stateError
	}

	missing := MissingPatterns(state, normalizedPatterns)
	if len(missing) == 0 {
		return Result{}, nil
	}

	appendedLines := escapePatterns(missing)
	if appendError := reconciler.appendLines(state, appendedLines); appendError != nil {
		return Result{}, appendError
	}

	return Result{MissingPatterns: missing, AppendedLines: appendedLines, Written: true}, nil
}

func (reconciler *Reconciler) appendLines(state State, lines []string) (resultError error) {
	file, openError := reconciler.fileSystem.OpenFile(reconciler.fileName, os.O_WRONLY|os.O_CREATE|os.O_APPEND, ignoreFilePermissionsConstant)
	if openError != nil {
		return fmt.Errorf(ignoreFileOpenErrorTemplate, reconciler.fileName, openError)
	}
	defer func() {
		if closeError := file.Close(); closeError != nil && resultError == nil {
			resultError = fmt.Errorf(ignoreFileCloseErrorTemplate, reconciler.fileName, closeError)
		}
	}()

	var builder strings.Builder
	if state.Exists && len(state.Lines) > 0 && !state.EndsWithNewline {
		builder.WriteString(lineSeparatorConstant)
	}
	for _, line := range lines {
		builder.WriteString(line)
		builder.WriteString(lineSeparatorConstant)
	}

	if _, writeError := io.WriteString(file, builder.String()); writeError != nil {
		return fmt.Errorf(ignoreFileWriteErrorTemplate, reconciler.fileName, writeError)
	}
	return nil
}

func parseState(content string) State {
	state := State{Exists: true}
	if len(content) == 0 {
		return state
	}

	state.EndsWithNewline = strings.HasSuffix(content, lineSeparatorConstant)
	trimmedContent := strings.TrimSuffix(content, lineSeparatorConstant)
	state.Lines = strings.Split(trimmedContent, lineSeparatorConstant)
	return state
}

func escapePatterns(patterns []string) []string {
	escaped := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		escaped = append(escaped, EscapePattern(pattern))
	}
	return escaped
}
