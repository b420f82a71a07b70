// Package config provides configuration management for pluginkit using Viper.
//
// Configuration is read from config.yaml in the current directory or in
// $XDG_CONFIG_HOME/pluginkit (overridable with PLUGINKIT_CONFIG_DIR). Every
// key can be overridden with a PLUGINKIT_ environment variable, nested keys
// joined with "_":
//
//	version: 1
//	marketplace_dir: ~/.local/share/pluginkit/marketplace
//	install_dir: ~/.claude
//	max_resource_size: 102400
//	frontmatter:
//	  known_fields: [name, description, model, allowed_tools, argument_hint, color]
//	  known_models: [opus, sonnet, haiku]
//
// # Loading Configuration
//
//	config.Init()
//	cfg, err := config.Load("") // search default locations
//
// Load validates the result and reports every problem at once:
//
//	validating config: unsupported config version: 2
//
// The frontmatter section configures the field classifier used by
// [Config.Parser]. Removing name or description from known_fields is
// rejected because those are the fields that carry multi-line text.
package config
