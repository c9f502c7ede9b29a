package ports

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-patchbay/pkg/units"
)

// ErrInvalidSchema is returned for schema entries that fail validation.
var ErrInvalidSchema = errors.New("invalid port schema")

var validate = validator.New()

// schemaFile is the on-disk layout of a schema table.
type schemaFile struct {
	Schemas []schemaEntry `yaml:"schemas" validate:"required,dive"`
}

type schemaEntry struct {
	Type     string      `yaml:"type" validate:"required"`
	Template string      `yaml:"template" validate:"omitempty,oneof=single source destination merge split"`
	Signal   string      `yaml:"signal" validate:"omitempty,oneof=audio control midi trigger"`
	Channels int         `yaml:"channels" validate:"omitempty,min=1,max=16"`
	Inputs   []portEntry `yaml:"inputs" validate:"dive"`
	Outputs  []portEntry `yaml:"outputs" validate:"dive"`
}

type portEntry struct {
	ID       string  `yaml:"id" validate:"required"`
	Label    string  `yaml:"label"`
	Signal   string  `yaml:"signal" validate:"required,oneof=audio control midi trigger"`
	Channels int     `yaml:"channels" validate:"omitempty,oneof=1 2"`
	Bind     string  `yaml:"bind"`
	Side     string  `yaml:"side" validate:"omitempty,oneof=top bottom left right"`
	Offset   float64 `yaml:"offset"`
}

// Decode reads a schema table.
func Decode(r io.Reader) (map[units.Type]Schema, error) {
	var file schemaFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode schemas: %w", err)
	}
	if err := validate.Struct(&file); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, formatValidationError(err))
	}

	out := make(map[units.Type]Schema, len(file.Schemas))
	for _, e := range file.Schemas {
		t, err := units.Parse(e.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
		}
		if _, dup := out[t]; dup {
			return nil, fmt.Errorf("%w: %s listed twice", ErrInvalidSchema, t)
		}
		s, err := e.build()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidSchema, t, err)
		}
		out[t] = s
	}
	return out, nil
}

func decodeBytes(b []byte) (map[units.Type]Schema, error) {
	return Decode(bytes.NewReader(b))
}

func (e schemaEntry) build() (Schema, error) {
	if e.Template != "" {
		if len(e.Inputs) > 0 || len(e.Outputs) > 0 {
			return Schema{}, errors.New("template and explicit ports are exclusive")
		}
		sig := SignalType(e.Signal)
		if sig == "" {
			sig = Audio
		}
		switch e.Template {
		case "single":
			return SinglePort(sig), nil
		case "source":
			return SourcePort(sig), nil
		case "destination":
			return DestinationPort(sig), nil
		case "merge":
			return MergePorts(e.Channels), nil
		case "split":
			return SplitPorts(e.Channels), nil
		}
	}

	s := Schema{
		Inputs:  index(convertPorts(e.Inputs), Input),
		Outputs: index(convertPorts(e.Outputs), Output),
	}
	seen := make(map[string]bool)
	for _, list := range [][]Port{s.Inputs, s.Outputs} {
		for _, p := range list {
			if seen[p.ID] {
				return Schema{}, fmt.Errorf("duplicate port id %q", p.ID)
			}
			seen[p.ID] = true
		}
	}
	return s, nil
}

func convertPorts(entries []portEntry) []Port {
	out := make([]Port, 0, len(entries))
	for _, pe := range entries {
		out = append(out, Port{
			ID:            pe.ID,
			Label:         pe.Label,
			Signal:        SignalType(pe.Signal),
			Channels:      ChannelCount(pe.Channels).Normalize(),
			BoundProperty: pe.Bind,
			Placement:     Placement{Side: Side(pe.Side), Offset: pe.Offset},
		})
	}
	return out
}

// formatValidationError reports the first failing field.
func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	e := verrs[0]
	switch e.Tag() {
	case "required":
		return fmt.Errorf("%s: field is required", e.Namespace())
	case "oneof":
		return fmt.Errorf("%s: must be one of [%s], got %v", e.Namespace(), e.Param(), e.Value())
	default:
		return fmt.Errorf("%s: validation failed (%s)", e.Namespace(), e.Tag())
	}
}
