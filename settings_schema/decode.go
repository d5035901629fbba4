package settings_schema

import (
	"bytes"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
)

// propOrderKey is the extension key under which the declaration order of an
// object node's properties is recorded. Go maps do not preserve key order, so
// the order is captured while the JSON document is tokenized and carried
// through resolution as a schema extension.
const propOrderKey = "x-prop-order"

// decodeOrdered decodes JSON into the usual map[string]any / []any / scalar
// tree, additionally injecting propOrderKey into every object that declares a
// "properties" member.
func decodeOrdered(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	value, _, err := parseOrdered(dec)
	if err != nil {
		return nil, err
	}
	// Trailing garbage after the first JSON value is an error.
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}
	return value, nil
}

// parseOrdered consumes one JSON value from the decoder. For objects it also
// returns the declaration order of the object's own keys.
func parseOrdered(dec *json.Decoder) (any, []string, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil, nil // string, float64, bool, or nil
	}

	switch delim {
	case '{':
		obj := make(map[string]any)
		var keys []string
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, nil, fmt.Errorf("object key is not a string: %v", keyTok)
			}

			value, childKeys, err := parseOrdered(dec)
			if err != nil {
				return nil, nil, err
			}
			obj[key] = value
			keys = append(keys, key)

			// Remember the declaration order of a schema node's properties.
			if key == "properties" && len(childKeys) > 0 {
				order := make([]any, len(childKeys))
				for i, k := range childKeys {
					order[i] = k
				}
				obj[propOrderKey] = order
			}
		}
		if _, err := dec.Token(); err != nil { // consume '}'
			return nil, nil, err
		}
		return obj, keys, nil

	case '[':
		var arr []any
		for dec.More() {
			value, _, err := parseOrdered(dec)
			if err != nil {
				return nil, nil, err
			}
			arr = append(arr, value)
		}
		if _, err := dec.Token(); err != nil { // consume ']'
			return nil, nil, err
		}
		if arr == nil {
			arr = []any{}
		}
		return arr, nil, nil
	}

	return nil, nil, fmt.Errorf("unexpected JSON delimiter %q", delim)
}
