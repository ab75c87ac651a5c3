// Package utils exposes reusable helpers consumed by the command-line entry point.
//
// It houses the ConfigurationLoader, which layers embedded defaults, configuration
// files and environment variables through Viper, and the LoggerFactory, which builds
// zap loggers in structured or console format.
package utils
