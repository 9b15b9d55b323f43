// Package config provides centralized configuration management for tsvmerge.
// It loads settings from defaults, an optional YAML file and the environment,
// validates them, and resolves the directories the tools read from and write to.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//  1. Environment variables (highest priority)
//  2. YAML configuration file
//  3. Default values (lowest priority)
//
// The config file is named by TSVMERGE_CONFIG, or found as tsvmerge.yaml,
// config.yaml or configs/config.yaml in the working directory.
//
// # Environment Variables
//
// All environment variables follow the pattern TSVMERGE_<SECTION>_<FIELD>:
//
//	TSVMERGE_SERVER_PORT=8080
//	TSVMERGE_LOGGING_LEVEL=debug
//	TSVMERGE_PATHS_DATA_DIR=/srv/runs
//	TSVMERGE_PROCESSING_DEFAULT_METRIC=Intensity
//	TSVMERGE_PROCESSING_WORKERS=4
//
// # Paths
//
// Relative directories are resolved against paths.base_dir, which defaults to
// the directory of the running executable:
//
//	paths, err := config.ResolvePaths(cfg.Paths)
//	dir, err := paths.GroupDir("lab-a")
package config
