// Package validation validates configuration structs with struct tags.
//
//	type PagingConfig struct {
//	    BatchSize int `mapstructure:"batch_size" validate:"gt=0"`
//	}
//	err := validation.Validate(cfg)
//
// Failures are returned as INVALID_ARGUMENT AppErrors whose details list the
// offending fields.
package validation
