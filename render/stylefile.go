package render

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// styleFile mirrors Style for YAML; nil fields keep the default.
type styleFile struct {
	Canvas *struct {
		Width  *int `yaml:"width"`
		Height *int `yaml:"height"`
	} `yaml:"canvas"`
	Padding      *float64   `yaml:"padding"`
	CornerRadius *float64   `yaml:"corner_radius"`
	Background   *YAMLColor `yaml:"background"`
	Shadow       *struct {
		Color   *YAMLColor `yaml:"color"`
		Blur    *float64   `yaml:"blur"`
		OffsetX *float64   `yaml:"offset_x"`
		OffsetY *float64   `yaml:"offset_y"`
	} `yaml:"shadow"`
	Border *struct {
		Color *YAMLColor `yaml:"color"`
		Width *float64   `yaml:"width"`
	} `yaml:"border"`
	MaxPixels *int `yaml:"max_pixels"`
}

// YAMLColor is a color written as #RRGGBB or #RRGGBBAA.
type YAMLColor struct {
	color.NRGBA
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}
	nc, err := ParseHexColor(value.Value)
	if err != nil {
		return err
	}
	c.NRGBA = nc
	return nil
}

// ParseHexColor parses #RRGGBB or #RRGGBBAA.
func ParseHexColor(v string) (color.NRGBA, error) {
	s := strings.TrimPrefix(strings.TrimSpace(v), "#")
	if len(s) != 6 && len(s) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color format: %s", v)
	}

	parse := func(start int) (uint8, error) {
		n, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(n), err
	}

	var c color.NRGBA
	var err error
	if c.R, err = parse(0); err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %s: %w", v, err)
	}
	if c.G, err = parse(2); err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %s: %w", v, err)
	}
	if c.B, err = parse(4); err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %s: %w", v, err)
	}
	c.A = 0xFF
	if len(s) == 8 {
		if c.A, err = parse(6); err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid color %s: %w", v, err)
		}
	}
	return c, nil
}

// LoadStyle reads a YAML style file and applies it over DefaultStyle.
func LoadStyle(path string) (Style, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Style{}, fmt.Errorf("read style %s: %w", path, err)
	}
	s, err := ParseStyle(data)
	if err != nil {
		return Style{}, fmt.Errorf("style %s: %w", path, err)
	}
	return s, nil
}

// ParseStyle decodes YAML style data over DefaultStyle and validates the
// result. Unknown keys are rejected.
func ParseStyle(data []byte) (Style, error) {
	var f styleFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return Style{}, fmt.Errorf("parse style: %w", err)
	}

	s := DefaultStyle()
	if f.Canvas != nil {
		setIf(&s.CanvasWidth, f.Canvas.Width)
		setIf(&s.CanvasHeight, f.Canvas.Height)
	}
	setIf(&s.Padding, f.Padding)
	setIf(&s.CornerRadius, f.CornerRadius)
	setColor(&s.Background, f.Background)
	if f.Shadow != nil {
		setColor(&s.ShadowColor, f.Shadow.Color)
		setIf(&s.ShadowBlur, f.Shadow.Blur)
		setIf(&s.ShadowOffsetX, f.Shadow.OffsetX)
		setIf(&s.ShadowOffsetY, f.Shadow.OffsetY)
	}
	if f.Border != nil {
		setColor(&s.BorderColor, f.Border.Color)
		setIf(&s.BorderWidth, f.Border.Width)
	}
	setIf(&s.MaxPixels, f.MaxPixels)

	if err := s.Validate(); err != nil {
		return Style{}, err
	}
	return s, nil
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func setColor(dst *color.NRGBA, v *YAMLColor) {
	if v != nil {
		*dst = v.NRGBA
	}
}
