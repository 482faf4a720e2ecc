// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys from a directory of plain-text files and
// resolves which key a generation call uses. Each file in the directory is
// one secret: the filename is the key name and the trimmed contents are
// the value.
//
// Key files: gemini-api-key (or google-api-key), anthropic-api-key.
package secrets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/cheatsheet/pkg/types"
)

// DefaultDir is the secrets directory relative to the working directory.
const DefaultDir = ".secrets"

// Source names where a resolved key came from.
type Source string

const (
	SourceNone   Source = ""
	SourceFlag   Source = "flag"
	SourceConfig Source = "config"
	SourceFile   Source = "secrets file"
)

// keyFiles lists the secret files holding each provider's key, in order
// of preference.
var keyFiles = map[types.Provider][]string{
	types.ProviderGemini:    {"gemini-api-key", "google-api-key"},
	types.ProviderAnthropic: {"anthropic-api-key"},
}

// Load reads all files in dir and returns a map of filename to trimmed
// contents. A missing directory is not an error; Load returns an empty
// map. Unreadable files produce a warning on warn but do not abort.
func Load(dir string, warn io.Writer) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(warn, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// KeyFile returns the preferred secret file name for provider.
func KeyFile(provider types.Provider) string {
	if files := keyFiles[provider]; len(files) > 0 {
		return files[0]
	}
	return string(provider) + "-api-key"
}

// Resolve picks the API key for provider. An explicit value (a flag) wins
// over a configured one (config file or environment), which wins over the
// loaded secrets. It returns SourceNone and an empty key when nothing is
// set; prompting the user is the caller's decision.
func Resolve(provider types.Provider, explicit, configured string, loaded map[string]string) (string, Source) {
	if v := strings.TrimSpace(explicit); v != "" {
		return v, SourceFlag
	}
	if v := strings.TrimSpace(configured); v != "" {
		return v, SourceConfig
	}
	files := keyFiles[provider]
	if len(files) == 0 {
		files = []string{KeyFile(provider)}
	}
	for _, name := range files {
		if v := loaded[name]; v != "" {
			return v, SourceFile
		}
	}
	return "", SourceNone
}
