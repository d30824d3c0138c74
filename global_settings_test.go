package glcache

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
)

func fullSettings() GlobalSettingsDescriptor {
	return GlobalSettingsDescriptor{
		Attachments: 2,
		CullMode:    gputypes.CullModeBack,
		Depth:       DepthState{Enabled: true, Compare: gputypes.CompareFunctionLess, Write: true},
		Stencil:     StencilState{Enabled: true, Front: keepStencilFace(), Back: keepStencilFace()},
		Blend: BlendState{
			Enabled:  true,
			OpColor:  gputypes.BlendOperationAdd,
			OpAlpha:  gputypes.BlendOperationAdd,
			SrcColor: gputypes.BlendFactorSrcAlpha,
			DstColor: gputypes.BlendFactorOneMinusSrcAlpha,
			SrcAlpha: gputypes.BlendFactorOne,
			DstAlpha: gputypes.BlendFactorZero,
		},
	}
}

func TestGlobalSettingsEncoding(t *testing.T) {
	tests := []struct {
		name   string
		desc   GlobalSettingsDescriptor
		fields int
	}{
		{"all disabled", GlobalSettingsDescriptor{Attachments: 1}, 5},
		{"depth only", GlobalSettingsDescriptor{Depth: DepthState{Enabled: true, Compare: gputypes.CompareFunctionLess}}, 7},
		{"everything", fullSettings(), 5 + 2 + 14 + 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := EncodeGlobalSettings(tt.desc)
			if len(enc) != tt.fields {
				t.Fatalf("encoded %d fields, want %d: %v", len(enc), tt.fields, enc)
			}
			got, err := DecodeGlobalSettings(enc)
			if err != nil {
				t.Fatalf("DecodeGlobalSettings: %v", err)
			}
			if got != tt.desc.Normalize() {
				t.Errorf("decoded %+v, want %+v", got, tt.desc.Normalize())
			}
		})
	}
}

func TestGlobalSettingsDisabledFieldsIgnored(t *testing.T) {
	a := GlobalSettingsDescriptor{
		Depth: DepthState{Enabled: false, Compare: gputypes.CompareFunctionAlways, Write: true},
		Blend: BlendState{Enabled: false, SrcColor: gputypes.BlendFactorOne},
	}
	b := GlobalSettingsDescriptor{}

	ea, eb := EncodeGlobalSettings(a), EncodeGlobalSettings(b)
	da, err := DecodeGlobalSettings(ea)
	if err != nil {
		t.Fatal(err)
	}
	db, err := DecodeGlobalSettings(eb)
	if err != nil {
		t.Fatal(err)
	}
	if da != db {
		t.Errorf("decoded %+v and %+v, want equal", da, db)
	}

	c, _ := newTestContext(t)
	sa, err := c.GlobalSettings(a)
	if err != nil {
		t.Fatal(err)
	}
	defer c.ReleaseGlobalSettings(sa)
	sb, err := c.GlobalSettings(b)
	if err != nil {
		t.Fatal(err)
	}
	defer c.ReleaseGlobalSettings(sb)
	if sa != sb {
		t.Error("descriptors differing only in disabled fields got different blocks")
	}
	if sa.Uses() != 2 {
		t.Errorf("Uses() = %d, want 2", sa.Uses())
	}
	if sa.Descriptor() != b {
		t.Errorf("Descriptor() = %+v, want the normalized descriptor", sa.Descriptor())
	}
}

func TestDecodeGlobalSettingsRejectsMalformedInput(t *testing.T) {
	full := EncodeGlobalSettings(fullSettings())
	tests := []struct {
		name   string
		fields []int32
	}{
		{"empty", nil},
		{"truncated header", []int32{0, 0}},
		{"truncated blend", full[:len(full)-1]},
		{"truncated depth", []int32{0, 0, 1, 2}},
		{"trailing", append(append([]int32(nil), full...), 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeGlobalSettings(tt.fields); !errors.Is(err, ErrInvalidDescriptor) {
				t.Errorf("DecodeGlobalSettings(%v) = %v, want ErrInvalidDescriptor", tt.fields, err)
			}
		})
	}
}

func TestGlobalSettingsValidation(t *testing.T) {
	c, drv := newTestContext(t)
	tests := []struct {
		name string
		desc GlobalSettingsDescriptor
	}{
		{"too many attachments", GlobalSettingsDescriptor{Attachments: MaxColorAttachments + 1}},
		{"negative attachments", GlobalSettingsDescriptor{Attachments: -1}},
		{"depth without compare", GlobalSettingsDescriptor{Depth: DepthState{Enabled: true}}},
		{"unknown cull mode", GlobalSettingsDescriptor{CullMode: 9}},
		{"stencil without ops", GlobalSettingsDescriptor{Stencil: StencilState{Enabled: true}}},
		{"blend without factors", GlobalSettingsDescriptor{Blend: BlendState{Enabled: true}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.GlobalSettings(tt.desc); !errors.Is(err, ErrInvalidDescriptor) {
				t.Errorf("GlobalSettings = %v, want ErrInvalidDescriptor", err)
			}
		})
	}
	if n := c.settings.Len(); n != 0 {
		t.Errorf("failed creations left %d cache entries", n)
	}
	if n := drv.TotalCalls(); n != 0 {
		t.Errorf("failed creations made %d driver calls", n)
	}
}

func TestGlobalSettingsReleaseEvicts(t *testing.T) {
	c, _ := newTestContext(t)
	s, err := c.GlobalSettings(fullSettings())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.BindGlobalSettings(s); err != nil {
		t.Fatal(err)
	}
	if err := c.ReleaseGlobalSettings(s); err != nil {
		t.Fatal(err)
	}
	if n := c.settings.Len(); n != 0 {
		t.Errorf("settings cache holds %d entries", n)
	}
	if c.shadow.settings != nil {
		t.Error("released settings still shadowed as bound")
	}

	c2, _ := newTestContext(t)
	if err := c2.ReleaseGlobalSettings(s); !errors.Is(err, ErrForeignObject) {
		t.Errorf("foreign ReleaseGlobalSettings = %v, want ErrForeignObject", err)
	}
}
