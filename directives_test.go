package icat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSizeSpec(t *testing.T) {
	tests := []struct {
		in      string
		want    SizeSpec
		wantErr bool
	}{
		{in: "", want: ""},
		{in: "auto", want: SizeAuto},
		{in: "80", want: "80"},
		{in: "100px", want: "100px"},
		{in: "50%", want: "50%"},
		{in: "0", want: "0"},
		{in: "px", wantErr: true},
		{in: "10p", wantErr: true},
		{in: "10x", wantErr: true},
		{in: "-5", wantErr: true},
		{in: "1.5", wantErr: true},
		{in: "AUTO", wantErr: true},
		{in: "10 px", wantErr: true},
		{in: "10%px", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSizeSpec(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidSizeSpec)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in != "", got.IsSet())
		})
	}
}

func TestDirectivesWithFilename(t *testing.T) {
	base := DisplayDirectives{Inline: true, Width: "10"}
	d := base.WithFilename("a.png")
	assert.Equal(t, "a.png", d.Filename)
	assert.Empty(t, base.Filename)
	assert.Equal(t, base.Width, d.Width)
}

func TestAspectRatioString(t *testing.T) {
	assert.Equal(t, "unset", AspectUnset.String())
	assert.Equal(t, "stretch", AspectStretch.String())
	assert.Equal(t, "preserve", AspectPreserve.String())
}
