package commands

import (
	"testing"

	"github.com/openmx/mxnet/pkg/mxnet"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		name     string
		datatype string
		raw      string
		want     string
	}{
		{"string scalar", "string", "hello", "hello"},
		{"string array", "string", "a,b,c", "a,b,c"},
		{"double scalar", "double", "3.5", "3.5"},
		{"double array", "double", "1,2.5,3", "1,2.5,3"},
		{"long scalar", "long", "-7", "-7"},
		{"ulong scalar", "ulong", "42", "42"},
		{"hex scalar", "hex", "0xff", "255"},
		{"bool true", "bool", "true", "true"},
		{"default is string", "", "plain", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := parseValue(tt.datatype, tt.raw)
			if err != nil {
				t.Fatalf("parseValue(%q, %q) error: %v", tt.datatype, tt.raw, err)
			}
			got := formatValue(v)
			if got != tt.want {
				t.Errorf("formatValue(parseValue(%q, %q)) = %q, want %q", tt.datatype, tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseValue_UnknownType(t *testing.T) {
	if _, err := parseValue("nonsense", "1"); err == nil {
		t.Error("parseValue with unknown type should return an error")
	}
}

func TestFormatValue_Nil(t *testing.T) {
	if got := formatValue(nil); got != "" {
		t.Errorf("formatValue(nil) = %q, want empty string", got)
	}
}

func TestDimsString(t *testing.T) {
	tests := []struct {
		name string
		dims []int
		want string
	}{
		{"scalar", nil, "-"},
		{"empty", []int{}, "-"},
		{"1d", []int{3}, "3"},
		{"2d", []int{3, 4}, "3x4"},
		{"3d", []int{2, 3, 4}, "2x3x4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dimsString(tt.dims); got != tt.want {
				t.Errorf("dimsString(%v) = %q, want %q", tt.dims, got, tt.want)
			}
		})
	}
}

func TestResolveOptionID(t *testing.T) {
	id, err := resolveOptionID("dataFormat")
	if err != nil {
		t.Fatalf("resolveOptionID(dataFormat) error: %v", err)
	}
	if id != mxnet.OptionDataFormat {
		t.Errorf("resolveOptionID(dataFormat) = %d, want %d", id, mxnet.OptionDataFormat)
	}

	id, err = resolveOptionID("99")
	if err != nil {
		t.Fatalf("resolveOptionID(99) error: %v", err)
	}
	if id != 99 {
		t.Errorf("resolveOptionID(99) = %d, want 99", id)
	}

	if _, err := resolveOptionID("notAnOption"); err == nil {
		t.Error("resolveOptionID with unknown name should return an error")
	}
}

func TestResolveAttributeID(t *testing.T) {
	id, err := resolveAttributeID("pollPeriod")
	if err != nil {
		t.Fatalf("resolveAttributeID(pollPeriod) error: %v", err)
	}
	if id != mxnet.AttributePollPeriod {
		t.Errorf("resolveAttributeID(pollPeriod) = %d, want %d", id, mxnet.AttributePollPeriod)
	}
}
