package main

import (
	"testing"

	"github.com/gogpu/shaderblend/blend"
	"github.com/gogpu/shaderblend/ir"
)

func TestParseMask(t *testing.T) {
	tests := []struct {
		in      string
		want    uint8
		wantErr bool
	}{
		{"rgba", 0xF, false},
		{"rgb", 0x7, false},
		{"ar", 0x9, false},
		{"", 0, false},
		{"rgbx", 0, true},
	}
	for _, tt := range tests {
		got, err := parseMask(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseMask(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseMask(%q) = %#x, want %#x", tt.in, got, tt.want)
		}
	}
}

func TestParseChannel(t *testing.T) {
	c, err := parseChannel("reverse-subtract", "src-alpha", "one-minus-dst-color")
	if err != nil {
		t.Fatalf("parseChannel: %v", err)
	}
	want := blend.Channel{Func: blend.FuncReverseSubtract, SrcFactor: blend.FactorSrcAlpha, DstFactor: blend.FactorOneMinusDstColor}
	if c != want {
		t.Errorf("parseChannel = %+v, want %+v", c, want)
	}

	for _, args := range [][3]string{
		{"multiply", "one", "zero"},
		{"add", "two", "zero"},
		{"add", "one", "one-minus-zero"},
	} {
		if _, err := parseChannel(args[0], args[1], args[2]); err == nil {
			t.Errorf("parseChannel(%q, %q, %q) succeeded", args[0], args[1], args[2])
		}
	}
}

func TestPassThroughValidates(t *testing.T) {
	for size := 1; size <= 4; size++ {
		m := passThrough(ir.F16, size)
		if errs, err := ir.Validate(m); err != nil || len(errs) > 0 {
			t.Errorf("size %d: %v %v", size, err, errs)
		}
	}
}
