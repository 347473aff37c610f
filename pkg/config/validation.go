package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags and custom rules.
//
// Uses go-playground/validator for declarative validation via struct tags,
// with additional custom validation for rules that cannot be expressed in
// tags.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	if err := validateCustomRules(cfg); err != nil {
		return err
	}

	return nil
}

// validateCustomRules performs custom validation beyond struct tags.
func validateCustomRules(cfg *Config) error {
	// A badger store needs somewhere to live unless it runs in memory.
	if cfg.Metadata.Type == "badger" {
		path, _ := cfg.Metadata.Badger["path"].(string)
		inMemory, _ := cfg.Metadata.Badger["in_memory"].(bool)
		if path == "" && !inMemory {
			return fmt.Errorf("metadata.badger: path is required unless in_memory is true")
		}
	}

	// The S3 store cannot fall back to defaults for its bucket.
	if cfg.Blob.Type == "s3" {
		if bucket, _ := cfg.Blob.S3["bucket"].(string); bucket == "" {
			return fmt.Errorf("blob.s3: bucket is required")
		}
		if region, _ := cfg.Blob.S3["region"].(string); region == "" {
			return fmt.Errorf("blob.s3: region is required")
		}
	}

	// The reconciler must wait at least one full interval before declaring
	// a reservation stranded, or it would race in-flight uploads.
	if cfg.Reconcile.Enabled && cfg.Reconcile.MaxAge < cfg.Reconcile.Interval {
		return fmt.Errorf("reconcile: max_age (%v) must be at least interval (%v)",
			cfg.Reconcile.MaxAge, cfg.Reconcile.Interval)
	}

	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		if len(validationErrs) > 0 {
			e := validationErrs[0]
			return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
				e.Namespace(), e.Tag(), e.Value())
		}
	}
	return err
}
