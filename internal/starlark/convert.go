package starlark

import (
	"fmt"
	"math"
	"sort"

	"go.starlark.net/starlark"
)

// GoToStarlarkValue converts a Go value to a Starlark value. Map keys are
// inserted in sorted order so dict iteration is deterministic. Whole
// float64 values, as produced by JSON decoding, become ints.
func GoToStarlarkValue(v any) (starlark.Value, error) {
	switch val := v.(type) {
	case nil:
		return starlark.None, nil
	case starlark.Value:
		return val, nil
	case bool:
		return starlark.Bool(val), nil
	case int:
		return starlark.MakeInt(val), nil
	case int32:
		return starlark.MakeInt64(int64(val)), nil
	case int64:
		return starlark.MakeInt64(val), nil
	case uint64:
		return starlark.MakeUint64(val), nil
	case float32:
		return floatValue(float64(val)), nil
	case float64:
		return floatValue(val), nil
	case string:
		return starlark.String(val), nil
	case []string:
		items := make([]starlark.Value, len(val))
		for i, s := range val {
			items[i] = starlark.String(s)
		}
		return starlark.NewList(items), nil
	case []any:
		items := make([]starlark.Value, len(val))
		for i, item := range val {
			starVal, err := GoToStarlarkValue(item)
			if err != nil {
				return nil, err
			}
			items[i] = starVal
		}
		return starlark.NewList(items), nil
	case []map[string]any:
		items := make([]starlark.Value, len(val))
		for i, item := range val {
			starVal, err := GoToStarlarkValue(item)
			if err != nil {
				return nil, err
			}
			items[i] = starVal
		}
		return starlark.NewList(items), nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		dict := starlark.NewDict(len(val))
		for _, k := range keys {
			starVal, err := GoToStarlarkValue(val[k])
			if err != nil {
				return nil, err
			}
			if err := dict.SetKey(starlark.String(k), starVal); err != nil {
				return nil, err
			}
		}
		return dict, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

func floatValue(f float64) starlark.Value {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return starlark.MakeInt64(int64(f))
	}
	return starlark.Float(f)
}

// StarlarkToGoValue converts a Starlark value to a Go value
func StarlarkToGoValue(v starlark.Value) (any, error) {
	switch val := v.(type) {
	case starlark.NoneType:
		return nil, nil
	case starlark.Bool:
		return bool(val), nil
	case starlark.Int:
		if i, ok := val.Int64(); ok {
			return i, nil
		}
		return val.String(), nil // Large integer as string
	case starlark.Float:
		return float64(val), nil
	case starlark.String:
		return string(val), nil
	case *starlark.List:
		return iterableToSlice(val, val.Len())
	case starlark.Tuple:
		return iterableToSlice(val, val.Len())
	case *starlark.Set:
		return iterableToSlice(val, val.Len())
	case *starlark.Dict:
		result := make(map[string]any, val.Len())
		for _, item := range val.Items() {
			key, ok := item[0].(starlark.String)
			if !ok {
				return nil, fmt.Errorf("dict key %s is not a string", item[0].String())
			}
			goVal, err := StarlarkToGoValue(item[1])
			if err != nil {
				return nil, err
			}
			result[string(key)] = goVal
		}
		return result, nil
	case *Failure:
		return nil, fmt.Errorf("failure value cannot be nested in a result: %s", val.Message)
	default:
		return val.String(), nil // Fallback to string representation
	}
}

func iterableToSlice(iterable starlark.Iterable, n int) ([]any, error) {
	result := make([]any, 0, n)
	iter := iterable.Iterate()
	defer iter.Done()

	var item starlark.Value
	for iter.Next(&item) {
		goVal, err := StarlarkToGoValue(item)
		if err != nil {
			return nil, err
		}
		result = append(result, goVal)
	}
	return result, nil
}
