package gitrepo

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	formatconfig "github.com/go-git/go-git/v5/plumbing/format/config"
)

const (
	configurationFileNameConstant          = "config"
	configurationFilePermissionsConstant   = os.FileMode(0o644)
	remoteSectionNameConstant              = "remote"
	remoteURLOptionConstant                = "url"
	remoteFetchOptionConstant              = "fetch"
	configurationStorageUnsupportedMessage = "repository storage does not expose a configuration file"
	configurationDecodeErrorTemplate       = "unable to parse configuration file: %w"
	configurationEncodeErrorTemplate       = "unable to encode configuration file: %w"
	invalidRemoteNameErrorTemplate         = "invalid remote name %q: %w"
)

type storageFileSystemProvider interface {
	Filesystem() billy.Filesystem
}

// configurationFile reads and writes the repository's local config file as
// stored on disk. URL rewrite rules (url.<base>.insteadOf) are never applied,
// so values read back are exactly what git keeps under remote.<name>.url.
type configurationFile struct {
	fileSystem billy.Filesystem
}

func newConfigurationFile(openedRepository *git.Repository) (configurationFile, error) {
	provider, providesFileSystem := openedRepository.Storer.(storageFileSystemProvider)
	if !providesFileSystem {
		return configurationFile{}, errors.New(configurationStorageUnsupportedMessage)
	}
	return configurationFile{fileSystem: provider.Filesystem()}, nil
}

func (file configurationFile) read() (*formatconfig.Config, error) {
	rawConfiguration := formatconfig.New()
	content, readError := util.ReadFile(file.fileSystem, configurationFileNameConstant)
	if readError != nil {
		if errors.Is(readError, os.ErrNotExist) {
			return rawConfiguration, nil
		}
		return nil, readError
	}

	if decodeError := formatconfig.NewDecoder(bytes.NewReader(content)).Decode(rawConfiguration); decodeError != nil {
		return nil, fmt.Errorf(configurationDecodeErrorTemplate, decodeError)
	}
	return rawConfiguration, nil
}

func (file configurationFile) write(rawConfiguration *formatconfig.Config) error {
	var buffer bytes.Buffer
	if encodeError := formatconfig.NewEncoder(&buffer).Encode(rawConfiguration); encodeError != nil {
		return fmt.Errorf(configurationEncodeErrorTemplate, encodeError)
	}
	return util.WriteFile(file.fileSystem, configurationFileNameConstant, buffer.Bytes(), configurationFilePermissionsConstant)
}

// storedRemoteURLs lists the remote.<name>.url values of every remote. pushurl
// entries are not included.
func storedRemoteURLs(rawConfiguration *formatconfig.Config) map[string][]string {
	urls := map[string][]string{}
	if !rawConfiguration.HasSection(remoteSectionNameConstant) {
		return urls
	}
	for _, subsection := range rawConfiguration.Section(remoteSectionNameConstant).Subsections {
		urls[subsection.Name] = append([]string{}, subsection.Options.GetAll(remoteURLOptionConstant)...)
	}
	return urls
}

// setStoredRemoteURL replaces every url value of the named remote with remoteURL.
// Other keys of an existing remote, such as fetch, pushurl, or mirror, are kept.
// A new remote receives the default fetch refspec.
func setStoredRemoteURL(rawConfiguration *formatconfig.Config, remoteName string, remoteURL string) error {
	remoteSection := rawConfiguration.Section(remoteSectionNameConstant)
	if remoteSection.HasSubsection(remoteName) {
		remoteSection.Subsection(remoteName).SetOption(remoteURLOptionConstant, remoteURL)
		return nil
	}

	remoteConfiguration := &config.RemoteConfig{Name: remoteName, URLs: []string{remoteURL}}
	if validationError := remoteConfiguration.Validate(); validationError != nil {
		return fmt.Errorf(invalidRemoteNameErrorTemplate, remoteName, validationError)
	}

	subsection := remoteSection.Subsection(remoteName)
	subsection.SetOption(remoteURLOptionConstant, remoteURL)
	for _, fetchRefSpec := range remoteConfiguration.Fetch {
		subsection.AddOption(remoteFetchOptionConstant, fetchRefSpec.String())
	}
	return nil
}
