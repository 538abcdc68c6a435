// Package schema validates loosely typed key/value data, such as values
// typed at the prompt or read from a YAML file, before they are stored.
//
// A Schema maps keys to Types:
//
//	s := schema.Schema{
//	    "engine.max_iterations": schema.IntAtLeast(1),
//	    "storage.backend":       schema.OneOf("file", "memory"),
//	    "splash.timeout":        schema.Duration(),
//	}
//
//	if err := schema.Validate(s, map[string]any{"splash.timeout": "3s"}); err != nil {
//	    // Handle validation errors
//	}
//
// Only the keys present in the data are checked, so partial updates
// validate on their own. Keys the schema does not define are rejected.
package schema
