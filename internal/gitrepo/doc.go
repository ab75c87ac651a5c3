// Package gitrepo opens, creates, and configures Git repositories rooted at a
// project directory.
//
// RepositoryManager looks for repository metadata only inside the project
// root itself; parent directories are never consulted, so a project nested in
// another repository receives its own repository. Remote URLs are written to
// the local config file in a single save per call, exactly as given: URL
// rewrite rules (url.<base>.insteadOf) neither alter what is written nor what
// is reported as the previous value.
package gitrepo
