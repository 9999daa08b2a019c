package docstore

// CloneFields deep-copies a field map so stored documents never alias
// caller-held maps or slices. Scalar values, time.Time and Ref are copied
// by value.
func CloneFields(f Fields) Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Fields:
		return CloneFields(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []Fields:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = CloneFields(e)
		}
		return out
	default:
		return v
	}
}

// MergeFields overlays patch onto base, replacing values key by key.
// Used by drivers to implement Update's partial-patch semantics.
func MergeFields(base, patch Fields) Fields {
	out := CloneFields(base)
	if out == nil {
		out = make(Fields, len(patch))
	}
	for k, v := range patch {
		out[k] = cloneValue(v)
	}
	return out
}
