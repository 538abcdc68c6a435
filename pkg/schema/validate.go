package schema

import "sort"

// Schema is a map of field names to their expected types.
type Schema map[string]Type

// Validate checks every key of data against the schema. Keys missing from
// data are not checked. All failures are reported, ordered by key.
func Validate(schema Schema, data map[string]any) error {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []error
	for _, key := range keys {
		value := data[key]
		fieldType, ok := schema[key]
		if !ok {
			errs = append(errs, &ValidationError{Key: key, Reason: "not defined in schema"})
			continue
		}
		if err := fieldType.Validate(value); err != nil {
			errs = append(errs, &ValidationError{Key: key, Reason: err.Error(), Value: value})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}
