// Package config defines the run configuration of ranchup.
//
// A [Config] is built once at process start: defaults, then an optional
// YAML file, then environment variables, then command line flags. Core
// packages receive the values they need and never read the environment
// themselves.
package config
