// Package envstruct populates configuration structs from environment
// variables declared with struct tags.
package envstruct

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrEnvNotSet    = errors.New("environment variable not set")
	ErrInvalidValue = errors.New("v must be a pointer to a struct")
)

// Populate fills the string fields of *v from the environment.
//
// lookupEnv has the same signature as [os.LookupEnv]. Fields are matched
// through the `env:"NAME"` tag; when the variable is unset the
// `envDefault:"value"` tag is used, and if that is missing too the field
// contributes an ErrEnvNotSet to the joined error.
func Populate(v any, lookupEnv func(string) (string, bool)) error {
	ptr := reflect.ValueOf(v)
	if ptr.Kind() != reflect.Ptr {
		return fmt.Errorf("%w: not pointer: %v", ErrInvalidValue, v)
	}
	target := ptr.Elem()
	if target.Kind() != reflect.Struct {
		return fmt.Errorf("%w: not struct: %v", ErrInvalidValue, v)
	}

	var errs []error
	targetType := target.Type()
	for i := range targetType.NumField() {
		field := target.Field(i)
		tag := targetType.Field(i).Tag

		name, tagged := tag.Lookup("env")
		if !tagged {
			continue
		}
		if !field.CanSet() || field.Kind() != reflect.String {
			errs = append(errs, fmt.Errorf("%w: field %s must be a settable string (env: %s)",
				ErrInvalidValue, targetType.Field(i).Name, name))
			continue
		}

		value, ok := lookupEnv(name)
		if !ok {
			if value, ok = tag.Lookup("envDefault"); !ok {
				errs = append(errs, fmt.Errorf("%w: %s", ErrEnvNotSet, name))
				continue
			}
		}
		field.SetString(value)
	}

	return errors.Join(errs...)
}
