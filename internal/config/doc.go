// Package config holds the packager settings and the project configuration.
//
// Settings are a small YAML file (see Config) with the defaults a team
// shares between runs: vendor string, install folder, collection name and
// output paths. The project configuration is the optional pyproject-style
// TOML file whose tool tables carry extra CPack variables.
package config
