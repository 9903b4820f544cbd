// Package config loads and saves the application configuration file.
package config
