package script

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/barnabasJ/ash-ai/internal/host"
)

// Query is the result shaping a read tool accepts next to its input.
type Query struct {
	Filter     map[string]any
	Sort       []SortField
	Offset     int
	Limit      int // 0 means no limit
	ResultType string
}

// SortField orders records by one field.
type SortField struct {
	Field      string
	Descending bool
}

// ParseQuery reads the query keys out of a read tool's arguments.
func ParseQuery(args map[string]any) (Query, error) {
	var q Query
	var errs []host.FieldError

	if raw, ok := args["filter"]; ok && raw != nil {
		filter, ok := raw.(map[string]any)
		if !ok {
			errs = append(errs, host.FieldError{Field: "filter", Code: host.CodeInvalid, Message: "must be an object"})
		}
		q.Filter = filter
	}

	if raw, ok := args["sort"]; ok && raw != nil {
		items, ok := raw.([]any)
		if !ok {
			errs = append(errs, host.FieldError{Field: "sort", Code: host.CodeInvalid, Message: "must be an array"})
		}
		for i, item := range items {
			spec, _ := item.(map[string]any)
			field, _ := spec["field"].(string)
			if field == "" {
				errs = append(errs, host.FieldError{Field: fmt.Sprintf("sort.%d.field", i), Code: host.CodeRequired, Message: "is required"})
				continue
			}
			direction, _ := spec["direction"].(string)
			switch direction {
			case "", "asc":
				q.Sort = append(q.Sort, SortField{Field: field})
			case "desc":
				q.Sort = append(q.Sort, SortField{Field: field, Descending: true})
			default:
				errs = append(errs, host.FieldError{Field: fmt.Sprintf("sort.%d.direction", i), Code: host.CodeInvalid, Message: "must be asc or desc"})
			}
		}
	}

	var err error
	if q.Offset, err = nonNegativeInt(args, "offset"); err != nil {
		errs = append(errs, host.FieldError{Field: "offset", Code: host.CodeInvalid, Message: err.Error()})
	}
	if q.Limit, err = nonNegativeInt(args, "limit"); err != nil {
		errs = append(errs, host.FieldError{Field: "limit", Code: host.CodeInvalid, Message: err.Error()})
	}

	if raw, ok := args["result_type"]; ok && raw != nil {
		resultType, _ := raw.(string)
		switch resultType {
		case "run_query", "count", "exists":
			q.ResultType = resultType
		default:
			errs = append(errs, host.FieldError{Field: "result_type", Code: host.CodeInvalid, Message: "must be run_query, count or exists"})
		}
	}

	if len(errs) > 0 {
		return Query{}, host.Invalid(errs...)
	}
	return q, nil
}

func nonNegativeInt(args map[string]any, key string) (int, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return 0, nil
	}
	var n int
	switch v := raw.(type) {
	case int:
		n = v
	case int64:
		n = int(v)
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("must be an integer")
		}
		n = int(v)
	default:
		return 0, fmt.Errorf("must be an integer")
	}
	if n < 0 {
		return 0, fmt.Errorf("must not be negative")
	}
	return n, nil
}

// Apply filters, sorts and pages records, then shapes the result by
// ResultType: the page itself, its size, or whether it is non-empty.
func (q Query) Apply(records []any) (any, error) {
	matched := make([]any, 0, len(records))
	for _, record := range records {
		fields, _ := record.(map[string]any)
		ok, err := matches(fields, q.Filter)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, record)
		}
	}

	if len(q.Sort) > 0 {
		sort.SliceStable(matched, func(i, j int) bool {
			a, _ := matched[i].(map[string]any)
			b, _ := matched[j].(map[string]any)
			for _, s := range q.Sort {
				c := compare(a[s.Field], b[s.Field])
				if c == 0 {
					continue
				}
				if s.Descending {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}

	if q.Offset >= len(matched) {
		matched = matched[:0]
	} else {
		matched = matched[q.Offset:]
	}
	if q.Limit > 0 && q.Limit < len(matched) {
		matched = matched[:q.Limit]
	}

	switch q.ResultType {
	case "count":
		return len(matched), nil
	case "exists":
		return len(matched) > 0, nil
	default:
		return matched, nil
	}
}

// matches reports whether record satisfies every filter entry. A plain
// value tests equality; an object applies operators to the field.
func matches(record map[string]any, filter map[string]any) (bool, error) {
	for field, want := range filter {
		got, present := record[field]
		ops, isOps := want.(map[string]any)
		if !isOps {
			if !equal(got, want) {
				return false, nil
			}
			continue
		}
		for op, operand := range ops {
			ok, err := applyOperator(op, got, present, operand)
			if err != nil {
				return false, host.Invalid(host.FieldError{
					Field:   "filter." + field,
					Code:    host.CodeInvalid,
					Message: err.Error(),
				})
			}
			if !ok {
				return false, nil
			}
		}
	}
	return true, nil
}

func applyOperator(op string, got any, present bool, operand any) (bool, error) {
	switch op {
	case "eq":
		return equal(got, operand), nil
	case "not_eq":
		return !equal(got, operand), nil
	case "gt":
		return present && compare(got, operand) > 0, nil
	case "gte":
		return present && compare(got, operand) >= 0, nil
	case "lt":
		return present && compare(got, operand) < 0, nil
	case "lte":
		return present && compare(got, operand) <= 0, nil
	case "in":
		values, ok := operand.([]any)
		if !ok {
			return false, fmt.Errorf("operator in needs an array")
		}
		for _, v := range values {
			if equal(got, v) {
				return true, nil
			}
		}
		return false, nil
	case "contains":
		s, ok := got.(string)
		sub, subOK := operand.(string)
		if !subOK {
			return false, fmt.Errorf("operator contains needs a string")
		}
		return ok && strings.Contains(s, sub), nil
	case "is_nil":
		want, ok := operand.(bool)
		if !ok {
			return false, fmt.Errorf("operator is_nil needs a boolean")
		}
		return (got == nil) == want, nil
	default:
		return false, fmt.Errorf("unknown operator %s", op)
	}
}

func equal(a, b any) bool {
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		return ok && af == bf
	}
	return reflect.DeepEqual(a, b)
}

// compare orders nil first, then numbers, strings and booleans by value.
// Values of different kinds compare by kind name.
func compare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			}
			return 0
		}
	}
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return strings.Compare(as, bs)
		}
	}
	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ab == bb:
				return 0
			case !ab:
				return -1
			}
			return 1
		}
	}
	return strings.Compare(fmt.Sprintf("%T", a), fmt.Sprintf("%T", b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
