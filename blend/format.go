// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package blend

import "fmt"

// NumericClass is how the stored bits of a format's channels are
// interpreted.
type NumericClass uint8

const (
	ClassNone    NumericClass = iota // no attachment
	ClassUnorm                       // unsigned normalized, [0, 1]
	ClassSnorm                       // signed normalized, [-1, 1]
	ClassFloat                       // floating point
	ClassUint                        // unsigned integer
	ClassSint                        // signed integer
	ClassUscaled                     // unsigned integer read as float
	ClassSscaled                     // signed integer read as float
)

// Format describes a color attachment format: the numeric class shared
// by its channels, the bit size of each of R, G, B and A (zero when the
// channel is absent), and whether color channels are sRGB encoded.
//
// Present channels must form a prefix of RGBA. Component order in
// memory does not matter to the pass, so BGRA8Unorm and RGBA8Unorm
// describe the same values.
type Format struct {
	Name  string
	Class NumericClass
	Bits  [4]uint8
	SRGB  bool
}

// FormatNone is the zero Format; targets with it are not lowered.
var FormatNone = Format{}

// Common attachment formats.
var (
	FormatR8Unorm      = Format{Name: "r8unorm", Class: ClassUnorm, Bits: [4]uint8{8}}
	FormatR8Snorm      = Format{Name: "r8snorm", Class: ClassSnorm, Bits: [4]uint8{8}}
	FormatR8Uint       = Format{Name: "r8uint", Class: ClassUint, Bits: [4]uint8{8}}
	FormatR8Sint       = Format{Name: "r8sint", Class: ClassSint, Bits: [4]uint8{8}}
	FormatRG8Unorm     = Format{Name: "rg8unorm", Class: ClassUnorm, Bits: [4]uint8{8, 8}}
	FormatRG8Snorm     = Format{Name: "rg8snorm", Class: ClassSnorm, Bits: [4]uint8{8, 8}}
	FormatRGBX8Unorm   = Format{Name: "rgbx8unorm", Class: ClassUnorm, Bits: [4]uint8{8, 8, 8}}
	FormatRGBA8Unorm   = Format{Name: "rgba8unorm", Class: ClassUnorm, Bits: [4]uint8{8, 8, 8, 8}}
	FormatRGBA8Srgb    = Format{Name: "rgba8unorm-srgb", Class: ClassUnorm, Bits: [4]uint8{8, 8, 8, 8}, SRGB: true}
	FormatRGBA8Snorm   = Format{Name: "rgba8snorm", Class: ClassSnorm, Bits: [4]uint8{8, 8, 8, 8}}
	FormatRGBA8Uint    = Format{Name: "rgba8uint", Class: ClassUint, Bits: [4]uint8{8, 8, 8, 8}}
	FormatRGBA8Sint    = Format{Name: "rgba8sint", Class: ClassSint, Bits: [4]uint8{8, 8, 8, 8}}
	FormatRGBA8Uscaled = Format{Name: "rgba8uscaled", Class: ClassUscaled, Bits: [4]uint8{8, 8, 8, 8}}
	FormatBGRA8Unorm   = Format{Name: "bgra8unorm", Class: ClassUnorm, Bits: [4]uint8{8, 8, 8, 8}}
	FormatBGRA8Srgb    = Format{Name: "bgra8unorm-srgb", Class: ClassUnorm, Bits: [4]uint8{8, 8, 8, 8}, SRGB: true}
	FormatRGB565Unorm  = Format{Name: "rgb565unorm", Class: ClassUnorm, Bits: [4]uint8{5, 6, 5}}
	FormatRGB10A2Unorm = Format{Name: "rgb10a2unorm", Class: ClassUnorm, Bits: [4]uint8{10, 10, 10, 2}}
	FormatRGB10A2Uint  = Format{Name: "rgb10a2uint", Class: ClassUint, Bits: [4]uint8{10, 10, 10, 2}}
	FormatR16Unorm     = Format{Name: "r16unorm", Class: ClassUnorm, Bits: [4]uint8{16}}
	FormatRGBA16Unorm  = Format{Name: "rgba16unorm", Class: ClassUnorm, Bits: [4]uint8{16, 16, 16, 16}}
	FormatRGBA16Snorm  = Format{Name: "rgba16snorm", Class: ClassSnorm, Bits: [4]uint8{16, 16, 16, 16}}
	FormatRGBA16Uint   = Format{Name: "rgba16uint", Class: ClassUint, Bits: [4]uint8{16, 16, 16, 16}}
	FormatRGBA16Sint   = Format{Name: "rgba16sint", Class: ClassSint, Bits: [4]uint8{16, 16, 16, 16}}
	FormatR16Float     = Format{Name: "r16float", Class: ClassFloat, Bits: [4]uint8{16}}
	FormatRG16Float    = Format{Name: "rg16float", Class: ClassFloat, Bits: [4]uint8{16, 16}}
	FormatRGBA16Float  = Format{Name: "rgba16float", Class: ClassFloat, Bits: [4]uint8{16, 16, 16, 16}}
	FormatRG11B10Float = Format{Name: "rg11b10ufloat", Class: ClassFloat, Bits: [4]uint8{11, 11, 10}}
	FormatR32Float     = Format{Name: "r32float", Class: ClassFloat, Bits: [4]uint8{32}}
	FormatRGBA32Float  = Format{Name: "rgba32float", Class: ClassFloat, Bits: [4]uint8{32, 32, 32, 32}}
	FormatRGBA32Uint   = Format{Name: "rgba32uint", Class: ClassUint, Bits: [4]uint8{32, 32, 32, 32}}
	FormatRGBA32Sint   = Format{Name: "rgba32sint", Class: ClassSint, Bits: [4]uint8{32, 32, 32, 32}}
)

var knownFormats = []Format{
	FormatR8Unorm, FormatR8Snorm, FormatR8Uint, FormatR8Sint,
	FormatRG8Unorm, FormatRG8Snorm, FormatRGBX8Unorm,
	FormatRGBA8Unorm, FormatRGBA8Srgb, FormatRGBA8Snorm, FormatRGBA8Uint, FormatRGBA8Sint, FormatRGBA8Uscaled,
	FormatBGRA8Unorm, FormatBGRA8Srgb,
	FormatRGB565Unorm, FormatRGB10A2Unorm, FormatRGB10A2Uint,
	FormatR16Unorm, FormatRGBA16Unorm, FormatRGBA16Snorm, FormatRGBA16Uint, FormatRGBA16Sint,
	FormatR16Float, FormatRG16Float, FormatRGBA16Float, FormatRG11B10Float,
	FormatR32Float, FormatRGBA32Float, FormatRGBA32Uint, FormatRGBA32Sint,
}

// LookupFormat returns the predefined format with the given name.
func LookupFormat(name string) (Format, bool) {
	for _, f := range knownFormats {
		if f.Name == name {
			return f, true
		}
	}
	return Format{}, false
}

// IsNone reports whether f is FormatNone.
func (f Format) IsNone() bool { return f.Class == ClassNone }

// IsUnorm reports whether every channel is unsigned normalized.
func (f Format) IsUnorm() bool { return f.Class == ClassUnorm }

// IsSnorm reports whether every channel is signed normalized.
func (f Format) IsSnorm() bool { return f.Class == ClassSnorm }

// IsFloat reports whether the channels hold floating point values.
func (f Format) IsFloat() bool { return f.Class == ClassFloat }

// IsPureInteger reports whether the channels hold integers that are
// read back as integers.
func (f Format) IsPureInteger() bool { return f.Class == ClassUint || f.Class == ClassSint }

// IsScaled reports whether the channels hold integers read back as
// floats.
func (f Format) IsScaled() bool { return f.Class == ClassUscaled || f.Class == ClassSscaled }

// IsSRGB reports whether color channels are sRGB encoded.
func (f Format) IsSRGB() bool { return f.SRGB }

// HasChannel reports whether channel i (0=R .. 3=A) is stored.
func (f Format) HasChannel(i int) bool { return i >= 0 && i < 4 && f.Bits[i] != 0 }

// NumComponents returns the number of stored channels.
func (f Format) NumComponents() int {
	n := 0
	for n < 4 && f.Bits[n] != 0 {
		n++
	}
	return n
}

func (f Format) validate() error {
	n := f.NumComponents()
	if n == 0 {
		return fmt.Errorf("format %q has no channels", f.Name)
	}
	for i := n; i < 4; i++ {
		if f.Bits[i] != 0 {
			return fmt.Errorf("format %q: channels must be a prefix of RGBA", f.Name)
		}
	}
	for i := 0; i < n; i++ {
		if f.Bits[i] > 32 {
			return fmt.Errorf("format %q: channel %d is %d bits wide", f.Name, i, f.Bits[i])
		}
	}
	if f.SRGB && !f.IsUnorm() {
		return fmt.Errorf("format %q: sRGB requires a unorm format", f.Name)
	}
	return nil
}

// String returns the format name.
func (f Format) String() string {
	if f.IsNone() {
		return "none"
	}
	return f.Name
}
