package ignorefile_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/require"

	"github.com/temirov/repoinit/internal/ignorefile"
)

const (
	reconcilerSubtestNameTemplateConstant = "%d_%s"
	buildPatternConstant                  = "build/"
	logPatternConstant                    = "*.log"
	hashPatternConstant                   = "foo#bar"
	escapedHashPatternConstant            = `foo\#bar`
	commentedContentConstant              = "# build artifacts\nbuild/\n"
	testIgnorePermissionsConstant         = 0o644
)

type recordingFileSystem struct {
	billy.Filesystem
	writeOpenCount int
}

func (fileSystem *recordingFileSystem) OpenFile(filename string, flag int, perm os.FileMode) (billy.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR|os.O_APPEND|os.O_CREATE|os.O_TRUNC) != 0 {
		fileSystem.writeOpenCount++
	}
	return fileSystem.Filesystem.OpenFile(filename, flag, perm)
}

func (fileSystem *recordingFileSystem) Create(filename string) (billy.File, error) {
	fileSystem.writeOpenCount++
	return fileSystem.Filesystem.Create(filename)
}

func writeIgnoreContent(testInstance *testing.T, fileSystem billy.Filesystem, content string) {
	testInstance.Helper()
	require.NoError(testInstance, util.WriteFile(fileSystem, ignorefile.FileNameConstant, []byte(content), testIgnorePermissionsConstant))
}

func readIgnoreContent(testInstance *testing.T, fileSystem billy.Filesystem) string {
	testInstance.Helper()
	content, readError := util.ReadFile(fileSystem, ignorefile.FileNameConstant)
	require.NoError(testInstance, readError)
	return string(content)
}

func TestReconcilerReconcile(testInstance *testing.T) {
	testCases := []struct {
		name                    string
		existingContent         *string
		patterns                []string
		expectedContent         string
		expectedAppendedLines   []string
		expectedMissingPatterns []string
		expectWritten           bool
	}{
		{
			name:                    "absent_file_is_created",
			existingContent:         nil,
			patterns:                []string{buildPatternConstant, logPatternConstant},
			expectedContent:         "*.log\nbuild/\n",
			expectedAppendedLines:   []string{logPatternConstant, buildPatternConstant},
			expectedMissingPatterns: []string{logPatternConstant, buildPatternConstant},
			expectWritten:           true,
		},
		{
			name:                    "empty_file_receives_sorted_patterns",
			existingContent:         stringPointer(""),
			patterns:                []string{buildPatternConstant, logPatternConstant},
			expectedContent:         "*.log\nbuild/\n",
			expectedAppendedLines:   []string{logPatternConstant, buildPatternConstant},
			expectedMissingPatterns: []string{logPatternConstant, buildPatternConstant},
			expectWritten:           true,
		},
		{
			name:                    "only_missing_pattern_is_appended",
			existingContent:         stringPointer(commentedContentConstant),
			patterns:                []string{buildPatternConstant, logPatternConstant},
			expectedContent:         "# build artifacts\nbuild/\n*.log\n",
			expectedAppendedLines:   []string{logPatternConstant},
			expectedMissingPatterns: []string{logPatternConstant},
			expectWritten:           true,
		},
		{
			name:                    "comment_does_not_satisfy_pattern",
			existingContent:         stringPointer("#build/\n"),
			patterns:                []string{buildPatternConstant},
			expectedContent:         "#build/\nbuild/\n",
			expectedAppendedLines:   []string{buildPatternConstant},
			expectedMissingPatterns: []string{buildPatternConstant},
			expectWritten:           true,
		},
		{
			name:                    "hash_pattern_is_escaped",
			existingContent:         stringPointer("build/\n"),
			patterns:                []string{hashPatternConstant},
			expectedContent:         "build/\nfoo\\#bar\n",
			expectedAppendedLines:   []string{escapedHashPatternConstant},
			expectedMissingPatterns: []string{hashPatternConstant},
			expectWritten:           true,
		},
		{
			name:                    "escaped_line_satisfies_pattern",
			existingContent:         stringPointer("foo\\#bar\n"),
			patterns:                []string{hashPatternConstant},
			expectedContent:         "foo\\#bar\n",
			expectedAppendedLines:   nil,
			expectedMissingPatterns: nil,
			expectWritten:           false,
		},
		{
			name:                    "missing_trailing_newline_is_completed",
			existingContent:         stringPointer("build/"),
			patterns:                []string{buildPatternConstant, logPatternConstant},
			expectedContent:         "build/\n*.log\n",
			expectedAppendedLines:   []string{logPatternConstant},
			expectedMissingPatterns: []string{logPatternConstant},
			expectWritten:           true,
		},
		{
			name:                    "crlf_lines_satisfy_patterns",
			existingContent:         stringPointer("build/\r\n*.log\r\n"),
			patterns:                []string{buildPatternConstant, logPatternConstant},
			expectedContent:         "build/\r\n*.log\r\n",
			expectedAppendedLines:   nil,
			expectedMissingPatterns: nil,
			expectWritten:           false,
		},
		{
			name:                    "byte_order_mark_is_ignored_for_comparison",
			existingContent:         stringPointer("\ufeffbuild/\n"),
			patterns:                []string{buildPatternConstant},
			expectedContent:         "\ufeffbuild/\n",
			expectedAppendedLines:   nil,
			expectedMissingPatterns: nil,
			expectWritten:           false,
		},
		{
			name:                    "duplicate_patterns_are_written_once",
			existingContent:         nil,
			patterns:                []string{logPatternConstant, logPatternConstant},
			expectedContent:         "*.log\n",
			expectedAppendedLines:   []string{logPatternConstant},
			expectedMissingPatterns: []string{logPatternConstant},
			expectWritten:           true,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(reconcilerSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			fileSystem := memfs.New()
			if testCase.existingContent != nil {
				writeIgnoreContent(testInstance, fileSystem, *testCase.existingContent)
			}

			reconciler := ignorefile.NewReconciler(fileSystem, "")
			result, reconcileError := reconciler.Reconcile(testCase.patterns)
			require.NoError(testInstance, reconcileError)

			require.Equal(testInstance, testCase.expectWritten, result.Written)
			require.Equal(testInstance, testCase.expectedAppendedLines, result.AppendedLines)
			require.Equal(testInstance, testCase.expectedMissingPatterns, result.MissingPatterns)
			require.Equal(testInstance, testCase.expectedContent, readIgnoreContent(testInstance, fileSystem))
		})
	}
}

func TestReconcilerIsIdempotent(testInstance *testing.T) {
	fileSystem := memfs.New()
	writeIgnoreContent(testInstance, fileSystem, commentedContentConstant)
	reconciler := ignorefile.NewReconciler(fileSystem, ignorefile.FileNameConstant)
	patterns := []string{buildPatternConstant, logPatternConstant, hashPatternConstant, `dir\name`}

	firstResult, firstError := reconciler.Reconcile(patterns)
	require.NoError(testInstance, firstError)
	require.True(testInstance, firstResult.Written)
	contentAfterFirstRun := readIgnoreContent(testInstance, fileSystem)

	secondResult, secondError := reconciler.Reconcile(patterns)
	require.NoError(testInstance, secondError)
	require.False(testInstance, secondResult.Written)
	require.Empty(testInstance, secondResult.AppendedLines)
	require.Equal(testInstance, contentAfterFirstRun, readIgnoreContent(testInstance, fileSystem))
	require.Equal(testInstance, "# build artifacts\nbuild/\n*.log\ndir\\\\name\nfoo\\#bar\n", contentAfterFirstRun)
}

func TestReconcilerPreservesExistingLines(testInstance *testing.T) {
	originalContent := "# header\n\n  indented\n!keep.me\n\\#literal\nbuild/\n"
	fileSystem := memfs.New()
	writeIgnoreContent(testInstance, fileSystem, originalContent)

	reconciler := ignorefile.NewReconciler(fileSystem, "")
	result, reconcileError := reconciler.Reconcile([]string{"#literal", "zzz", "aaa"})
	require.NoError(testInstance, reconcileError)
	require.Equal(testInstance, []string{"aaa", "zzz"}, result.AppendedLines)
	require.Equal(testInstance, originalContent+"aaa\nzzz\n", readIgnoreContent(testInstance, fileSystem))
}

func TestReconcilerSkipsWriteWhenSatisfied(testInstance *testing.T) {
	recordingSystem := &recordingFileSystem{Filesystem: memfs.New()}
	writeIgnoreContent(testInstance, recordingSystem.Filesystem, commentedContentConstant)

	reconciler := ignorefile.NewReconciler(recordingSystem, "")
	result, reconcileError := reconciler.Reconcile([]string{buildPatternConstant})
	require.NoError(testInstance, reconcileError)
	require.False(testInstance, result.Written)
	require.Zero(testInstance, recordingSystem.writeOpenCount)
}

func TestReconcilerEmptyPatternSetIsNoOp(testInstance *testing.T) {
	recordingSystem := &recordingFileSystem{Filesystem: memfs.New()}

	reconciler := ignorefile.NewReconciler(recordingSystem, "")
	result, reconcileError := reconciler.Reconcile(nil)
	require.NoError(testInstance, reconcileError)
	require.False(testInstance, result.Written)
	require.Zero(testInstance, recordingSystem.writeOpenCount)

	_, statError := recordingSystem.Stat(ignorefile.FileNameConstant)
	require.True(testInstance, errors.Is(statError, os.ErrNotExist))
}

func TestReconcilerLeavesModificationTimeOnDisk(testInstance *testing.T) {
	projectDirectory := testInstance.TempDir()
	ignoreFilePath := filepath.Join(projectDirectory, ignorefile.FileNameConstant)
	require.NoError(testInstance, os.WriteFile(ignoreFilePath, []byte(commentedContentConstant), testIgnorePermissionsConstant))

	pastTime := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(testInstance, os.Chtimes(ignoreFilePath, pastTime, pastTime))

	reconciler := ignorefile.NewReconciler(osfs.New(projectDirectory), "")
	result, reconcileError := reconciler.Reconcile([]string{buildPatternConstant})
	require.NoError(testInstance, reconcileError)
	require.False(testInstance, result.Written)

	fileInfo, statError := os.Stat(ignoreFilePath)
	require.NoError(testInstance, statError)
	require.True(testInstance, fileInfo.ModTime().Equal(pastTime))
}

func TestReconcilerPlanDoesNotWrite(testInstance *testing.T) {
	recordingSystem := &recordingFileSystem{Filesystem: memfs.New()}
	writeIgnoreContent(testInstance, recordingSystem.Filesystem, commentedContentConstant)

	reconciler := ignorefile.NewReconciler(recordingSystem, "")
	result, planError := reconciler.Plan([]string{buildPatternConstant, hashPatternConstant})
	require.NoError(testInstance, planError)
	require.False(testInstance, result.Written)
	require.Equal(testInstance, []string{hashPatternConstant}, result.MissingPatterns)
	require.Equal(testInstance, []string{escapedHashPatternConstant}, result.AppendedLines)
	require.Zero(testInstance, recordingSystem.writeOpenCount)
	require.Equal(testInstance, commentedContentConstant, readIgnoreContent(testInstance, recordingSystem.Filesystem))
}

func TestNormalizePatternsRejectsInvalidInput(testInstance *testing.T) {
	testCases := []struct {
		name     string
		patterns []string
	}{
		{name: "empty_pattern", patterns: []string{buildPatternConstant, ""}},
		{name: "blank_pattern", patterns: []string{"   "}},
		{name: "multiline_pattern", patterns: []string{"build/\n*.log"}},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(reconcilerSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			fileSystem := memfs.New()
			reconciler := ignorefile.NewReconciler(fileSystem, "")
			_, reconcileError := reconciler.Reconcile(testCase.patterns)
			require.Error(testInstance, reconcileError)

			_, statError := fileSystem.Stat(ignorefile.FileNameConstant)
			require.True(testInstance, errors.Is(statError, os.ErrNotExist))
		})
	}
}

func stringPointer(value string) *string {
	return &value
}
