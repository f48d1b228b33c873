package validator

import (
	"testing"

	"github.com/google/uuid"

	"github.com/loykin/apiscope/pkg/value"
)

func TestDefaults(t *testing.T) {
	d := Defaults()
	tests := []struct {
		name string
		in   any
		pass bool
	}{
		{"ignore", nil, true},
		{"null", nil, true},
		{"null", "x", false},
		{"notnull", "x", true},
		{"notnull", nil, false},
		{"uuid", uuid.NewString(), true},
		{"uuid", "not-a-uuid", false},
		{"uuid", 12, false},
		{"string", "x", true},
		{"string", 1, false},
		{"number", 1.5, true},
		{"number", "1", false},
		{"boolean", false, true},
		{"array", []any{1}, true},
		{"array", map[string]any{}, false},
		{"object", map[string]any{"a": 1}, true},
		{"object", "{}", false},
	}
	for _, tt := range tests {
		res := d[tt.name].Validate(value.New(tt.in))
		if res.Pass != tt.pass {
			t.Fatalf("%s(%#v) = %+v, want pass=%v", tt.name, tt.in, res, tt.pass)
		}
		if !res.Pass && res.Message == "" {
			t.Fatalf("%s(%#v): failed result without message", tt.name, tt.in)
		}
	}
}

func TestDefaults_FreshMap(t *testing.T) {
	a := Defaults()
	delete(a, "uuid")
	if _, ok := Defaults()["uuid"]; !ok {
		t.Fatalf("Defaults must return a new map each call")
	}
}

func TestNames(t *testing.T) {
	names := Names(map[string]Validator{"#uuid": nil, "null": nil})
	if len(names) != 2 || names[0] != "#null" || names[1] != "#uuid" {
		t.Fatalf("unexpected names: %v", names)
	}
}
