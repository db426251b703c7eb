package logging

import (
	"log/slog"
	"testing"
)

func TestWithCommon(t *testing.T) {
	existing := slog.String(FieldUpstream, "processing")
	tests := []struct {
		name    string
		service string
		version string
		want    []string
	}{
		{name: "both", service: "city-dashboard", version: "v1", want: []string{FieldUpstream, FieldService, FieldVersion}},
		{name: "service only", service: "city-dashboard", want: []string{FieldUpstream, FieldService}},
		{name: "neither", want: []string{FieldUpstream}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := WithCommon([]slog.Attr{existing}, tt.service, tt.version)
			if len(attrs) != len(tt.want) {
				t.Fatalf("expected %d attrs, got %+v", len(tt.want), attrs)
			}
			for i, key := range tt.want {
				if attrs[i].Key != key {
					t.Fatalf("attr %d: expected %s, got %s", i, key, attrs[i].Key)
				}
			}
		})
	}
}

func TestFieldKeysAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, key := range []string{
		FieldService, FieldVersion, FieldUpstream, FieldURL, FieldRequestID, FieldPath, FieldMethod,
		FieldStatusCode, FieldFailure, FieldKind, FieldIndex, FieldSlot, FieldCount, FieldDurationMS,
	} {
		if key == "" || seen[key] {
			t.Fatalf("field key %q is empty or duplicated", key)
		}
		seen[key] = true
	}
}
