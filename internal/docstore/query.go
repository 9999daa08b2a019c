package docstore

import (
	"sort"
	"time"
)

// ApplyQuery narrows, orders and projects a streamed collection in-process.
// Drivers fetch a collection's documents and delegate the Query semantics
// here so all three drivers match exactly.
func ApplyQuery(docs []Document, q Query) []Document {
	out := docs[:0:0]
	for _, d := range docs {
		if matches(d.Fields, q.Filters) {
			out = append(out, d)
		}
	}
	if len(q.OrderBy) > 0 {
		sort.SliceStable(out, func(i, j int) bool {
			for _, o := range q.OrderBy {
				c := compare(out[i].Fields[o.Field], out[j].Fields[o.Field])
				if c == 0 {
					continue
				}
				if o.Desc {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	if len(q.Select) > 0 {
		for i := range out {
			out[i].Fields = project(out[i].Fields, q.Select)
		}
	}
	return out
}

func matches(f Fields, filters []Filter) bool {
	for _, fl := range filters {
		v, ok := f[fl.Field]
		if !ok {
			return false
		}
		switch fl.Op {
		case "==":
			if compare(v, fl.Value) != 0 {
				return false
			}
		case "in":
			if !containsValue(fl.Value, v) {
				return false
			}
		case ">=":
			if compare(v, fl.Value) < 0 {
				return false
			}
		case "<":
			if compare(v, fl.Value) >= 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func containsValue(set, v any) bool {
	switch s := set.(type) {
	case []string:
		for _, e := range s {
			if compare(v, e) == 0 {
				return true
			}
		}
	case []any:
		for _, e := range s {
			if compare(v, e) == 0 {
				return true
			}
		}
	}
	return false
}

// compare orders two field values. Mixed or unordered types compare equal so
// filters on them simply fail the predicate rather than panicking.
func compare(a, b any) int {
	switch av := a.(type) {
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	case string:
		if bv, ok := b.(string); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case bv:
				return -1
			}
			return 1
		}
	case Ref:
		if bv, ok := b.(Ref); ok {
			switch {
			case av.Path < bv.Path:
				return -1
			case av.Path > bv.Path:
				return 1
			}
			return 0
		}
	}
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}
	return 0
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func project(f Fields, keep []string) Fields {
	out := make(Fields, len(keep))
	for _, k := range keep {
		if v, ok := f[k]; ok {
			out[k] = v
		}
	}
	return out
}
