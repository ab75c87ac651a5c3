// Package configure prepares a project directory for version control: it ensures a
// repository exists at the directory itself, points the requested remotes at their
// URLs, and appends any missing patterns to the root ignore file.
package configure
