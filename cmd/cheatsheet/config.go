// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/cheatsheet/pkg/types"
)

// pipelineConfig merges command flags over viper settings (config file and
// CHEATSHEET_* environment) and fills in defaults. A flag only counts when
// it was set on the command line.
func pipelineConfig(cmd *cobra.Command) (types.PipelineConfig, error) {
	cfg := types.PipelineConfig{
		Generation: types.GenerationConfig{
			AIConfig: types.AIConfig{
				Provider: types.Provider(flagOrConfig(cmd, "provider", "provider")),
				Model:    flagOrConfig(cmd, "model", "model"),
			},
			HTTPConfig: types.HTTPConfig{
				Timeout: viper.GetDuration("timeout"),
			},
			MaxInputBytes: viper.GetInt64("max_input_bytes"),
		},
		Render: types.RenderConfig{
			Engine:           types.RenderEngine(flagOrConfig(cmd, "engine", "render.engine")),
			PageSize:         flagOrConfig(cmd, "page-size", "render.page_size"),
			Validate:         viper.GetBool("render.validate"),
			ContainerImage:   viper.GetString("render.container_image"),
			MaxMarkdownBytes: viper.GetInt64("render.max_markdown_bytes"),
		},
		OutputDir: flagOrConfig(cmd, "out-dir", "output_dir"),
	}

	if f := cmd.Flags().Lookup("timeout"); f != nil && f.Changed {
		cfg.Generation.Timeout, _ = cmd.Flags().GetDuration("timeout")
	}
	if f := cmd.Flags().Lookup("validate"); f != nil && f.Changed {
		cfg.Render.Validate, _ = cmd.Flags().GetBool("validate")
	}

	if name := flagOrConfig(cmd, "style", "style"); name != "" {
		style, err := types.ParseStyle(name)
		if err != nil {
			return types.PipelineConfig{}, err
		}
		cfg.Generation.Style = style
	}

	return cfg.WithDefaults(), nil
}

// configuredKey returns the API key for provider from viper: api_key
// applies to any provider, then the provider's conventional variable.
func configuredKey(provider types.Provider) string {
	if v := viper.GetString("api_key"); v != "" {
		return v
	}
	if provider == types.ProviderAnthropic {
		return viper.GetString("anthropic_api_key")
	}
	return viper.GetString("google_api_key")
}

func flagOrConfig(cmd *cobra.Command, flag, key string) string {
	if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
		return f.Value.String()
	}
	return viper.GetString(key)
}
