package gitrepo

import (
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"go.uber.org/zap"
)

const (
	logFieldRemoteProtocolConstant = "remote_protocol"
	logFieldRemoteHostConstant     = "remote_host"
	logFieldRemotePathConstant     = "remote_path"
)

// RemoteEndpoint summarizes the parts of a remote URL worth reporting.
type RemoteEndpoint struct {
	Protocol string
	Host     string
	Path     string
}

// ParseRemoteEndpoint splits a remote URL into protocol, host, and path.
// The boolean is false for URLs go-git cannot parse; such URLs are still valid remote values.
func ParseRemoteEndpoint(remoteURL string) (RemoteEndpoint, bool) {
	trimmedURL := strings.TrimSpace(remoteURL)
	if len(trimmedURL) == 0 {
		return RemoteEndpoint{}, false
	}

	endpoint, parseError := transport.NewEndpoint(trimmedURL)
	if parseError != nil {
		return RemoteEndpoint{}, false
	}

	return RemoteEndpoint{Protocol: endpoint.Protocol, Host: endpoint.Host, Path: endpoint.Path}, true
}

// DescribeRemoteURL returns structured log fields for a remote URL.
func DescribeRemoteURL(remoteURL string) []zap.Field {
	endpoint, parsed := ParseRemoteEndpoint(remoteURL)
	if !parsed {
		return nil
	}
	return []zap.Field{
		zap.String(logFieldRemoteProtocolConstant, endpoint.Protocol),
		zap.String(logFieldRemoteHostConstant, endpoint.Host),
		zap.String(logFieldRemotePathConstant, endpoint.Path),
	}
}
