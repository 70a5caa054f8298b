// Package config loads forumd's YAML configuration, expanding ${ENV}
// references so secrets can live in the environment instead of the file.
package config
