// Package cli constructs the repoinit command-line interface, wiring the Cobra
// command hierarchy, the Viper configuration loader with embedded defaults, and
// zap logging. Execute runs the default command set.
package cli
