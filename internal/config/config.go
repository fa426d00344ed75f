// Package config holds the runtime configuration shared by all commands.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Config is populated from flags and DATASHIFT_* environment variables.
type Config struct {
	// Common flags
	Dir                string `mapstructure:"dir"                 validate:"required"`
	Force              bool   `mapstructure:"force"`
	Quiet              bool   `mapstructure:"quiet"`
	Stats              bool   `mapstructure:"stats"`
	Delete             bool   `mapstructure:"delete"`
	PreserveTimestamps bool   `mapstructure:"preserve-timestamps"`
	Seed               uint64 `mapstructure:"seed"`
	FailFast           bool   `mapstructure:"fail-fast"`

	// Set by the command being run
	Mode string `mapstructure:"-" validate:"oneof=shift restore"`

	// IgnoreSkipped keeps the exit status clean when inputs were only skipped.
	IgnoreSkipped bool `mapstructure:"-"`

	// Positional arguments
	Files []string `mapstructure:"-" validate:"min=1,dive,required"`
}

// Validate validates the configuration against the struct tags.
func (c Config) Validate() error {
	validate := validator.New()

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validating configuration: %w", err)
	}

	return nil
}
