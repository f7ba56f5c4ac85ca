// Copyright (c) 2025 Resmirror
//
// Assets package embeds static files into the binary

package assets

import _ "embed"

//go:embed config.example.toml
var configTemplateTOML []byte

// ConfigTemplateTOML returns the commented TOML workspace config
func ConfigTemplateTOML() []byte {
	return configTemplateTOML
}
