package usi

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// OptionType is one of the five USI/UCI option kinds (spec.md §4.4).
type OptionType string

const (
	Check  OptionType = "check"
	Spin   OptionType = "spin"
	Combo  OptionType = "combo"
	Button OptionType = "button"
	String OptionType = "string"
)

// Option describes one engine-declared option and its current value.
type Option struct {
	Name    string
	Type    OptionType
	Default string
	Min     int
	Max     int
	Choices []string
	Value   string
}

// IsValid reports whether value is acceptable for this option's declared
// domain (spec.md §4.4). Coercion uses spf13/cast the way a GUI receiving
// loosely-typed strings from both its config file and the engine's own
// declarations must, rather than bespoke strconv parsing per type.
func (o Option) IsValid(value string) bool {
	switch o.Type {
	case Check:
		_, err := cast.ToBoolE(value)
		return err == nil
	case Spin:
		n, err := cast.ToIntE(value)
		if err != nil {
			return false
		}
		return n >= o.Min && n <= o.Max
	case Combo:
		for _, c := range o.Choices {
			if c == value {
				return true
			}
		}
		return false
	case Button:
		return value == "true" || value == ""
	case String:
		return true
	default:
		return false
	}
}

// Registry holds the options an engine declared during its "usi"/"uci"
// handshake, keyed by name.
type Registry struct {
	options map[string]*Option
	order   []string
}

// NewRegistry returns an empty option registry.
func NewRegistry() *Registry {
	return &Registry{options: map[string]*Option{}}
}

// Add registers a declared option, overwriting any previous declaration of
// the same name.
func (r *Registry) Add(opt Option) {
	if _, exists := r.options[opt.Name]; !exists {
		r.order = append(r.order, opt.Name)
	}
	if opt.Value == "" {
		opt.Value = opt.Default
	}
	r.options[opt.Name] = &opt
}

// Get returns the option declaration, if known.
func (r *Registry) Get(name string) (Option, bool) {
	o, ok := r.options[name]
	if !ok {
		return Option{}, false
	}
	return *o, true
}

// Names returns declared option names in declaration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// SetValue validates and records a new value for a known option. Per
// spec.md §4.2, unknown or invalid options are not an error to the caller
// of SetOption on EngineSession; Registry itself reports the condition so
// the caller can log a warning.
func (r *Registry) SetValue(name, value string) error {
	o, ok := r.options[name]
	if !ok {
		return fmt.Errorf("usi: unknown option %q", name)
	}
	if !o.IsValid(value) {
		return fmt.Errorf("usi: invalid value %q for option %q", value, name)
	}
	o.Value = value
	return nil
}

// Value returns the current value of a known option.
func (r *Registry) Value(name string) (string, bool) {
	o, ok := r.options[name]
	if !ok {
		return "", false
	}
	return o.Value, true
}

// ParseOptionLine parses a line of the form
// "option name <N> type <T> [default D] [min X] [max Y] [var V]*".
func ParseOptionLine(line string) (Option, error) {
	fields := strings.Fields(line)
	if len(fields) < 4 || fields[0] != "option" {
		return Option{}, fmt.Errorf("usi: malformed option line: %q", line)
	}

	var opt Option
	i := 1
	for i < len(fields) {
		switch fields[i] {
		case "name":
			j := i + 1
			for j < len(fields) && fields[j] != "type" {
				j++
			}
			opt.Name = strings.Join(fields[i+1:j], " ")
			i = j
		case "type":
			if i+1 >= len(fields) {
				return Option{}, fmt.Errorf("usi: option line missing type: %q", line)
			}
			opt.Type = OptionType(fields[i+1])
			i += 2
		case "default":
			j := i + 1
			for j < len(fields) && !isOptionKeyword(fields[j]) {
				j++
			}
			opt.Default = strings.Join(fields[i+1:j], " ")
			i = j
		case "min":
			if i+1 >= len(fields) {
				return Option{}, fmt.Errorf("usi: option line missing min value: %q", line)
			}
			n, err := cast.ToIntE(fields[i+1])
			if err != nil {
				return Option{}, fmt.Errorf("usi: invalid min in option line: %q", line)
			}
			opt.Min = n
			i += 2
		case "max":
			if i+1 >= len(fields) {
				return Option{}, fmt.Errorf("usi: option line missing max value: %q", line)
			}
			n, err := cast.ToIntE(fields[i+1])
			if err != nil {
				return Option{}, fmt.Errorf("usi: invalid max in option line: %q", line)
			}
			opt.Max = n
			i += 2
		case "var":
			if i+1 >= len(fields) {
				return Option{}, fmt.Errorf("usi: option line missing var value: %q", line)
			}
			opt.Choices = append(opt.Choices, fields[i+1])
			i += 2
		default:
			i++
		}
	}

	if opt.Name == "" || opt.Type == "" {
		return Option{}, fmt.Errorf("usi: option line missing name or type: %q", line)
	}
	opt.Value = opt.Default
	return opt, nil
}

func isOptionKeyword(s string) bool {
	switch s {
	case "min", "max", "var", "default":
		return true
	default:
		return false
	}
}
