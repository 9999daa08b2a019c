package docstore

import (
	"reflect"
	"testing"
	"time"
)

func TestCodecRoundTripsRefsAndTimes(t *testing.T) {
	created := time.Date(2026, 3, 2, 10, 30, 0, 123456789, time.UTC)
	in := Fields{
		"projectName": "Apollo",
		"count":       float64(3),
		"userRef":     NewRef("users/alice@x.com"),
		"createdAt":   created,
		"members": []any{
			Fields{"userRef": NewRef("users/bob@x.com"), "isOwner": false},
		},
	}

	b, err := EncodeFields(in)
	if err != nil {
		t.Fatal(err)
	}
	out, err := DecodeFields(b)
	if err != nil {
		t.Fatal(err)
	}

	if out["projectName"] != "Apollo" || out["count"] != float64(3) {
		t.Errorf("plain values changed: %v", out)
	}
	if ref, ok := out["userRef"].(Ref); !ok || ref.Path != "users/alice@x.com" {
		t.Errorf("ref not rehydrated: %v", out["userRef"])
	}
	ts, ok := out["createdAt"].(time.Time)
	if !ok || !ts.Equal(created) {
		t.Errorf("time not rehydrated: %v", out["createdAt"])
	}
	member, ok := out["members"].([]any)[0].(Fields)
	if !ok {
		t.Fatalf("nested member shape: %T", out["members"].([]any)[0])
	}
	if ref, ok := member["userRef"].(Ref); !ok || ref.Path != "users/bob@x.com" {
		t.Errorf("nested ref not rehydrated: %v", member["userRef"])
	}
}

func TestCodecLeavesUserMarkerlessMapsAlone(t *testing.T) {
	in := Fields{"meta": Fields{"$ref": 42}} // $ref key with a non-string value
	b, err := EncodeFields(in)
	if err != nil {
		t.Fatal(err)
	}
	out, err := DecodeFields(b)
	if err != nil {
		t.Fatal(err)
	}
	meta, ok := out["meta"].(Fields)
	if !ok {
		t.Fatalf("meta shape: %T", out["meta"])
	}
	if !reflect.DeepEqual(meta["$ref"], float64(42)) {
		t.Errorf("non-marker map mangled: %v", meta)
	}
}
