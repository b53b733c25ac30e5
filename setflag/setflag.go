// Package setflag is a flag.Value holding a set of strings drawn from a fixed
// list of options, like -kinds=artists,albums.
package setflag

import (
	"fmt"
	"slices"
	"strings"
)

func New(options ...string) *SetFlag {
	sf := &SetFlag{
		values:  make(map[string]struct{}, len(options)),
		options: make(map[string]struct{}, len(options)),
	}
	for _, opt := range options {
		sf.options[opt] = struct{}{}
	}
	return sf
}

type SetFlag struct {
	options map[string]struct{}
	values  map[string]struct{}
}

// Default sets values if none have been set yet.
func (sf *SetFlag) Default(values ...string) *SetFlag {
	if len(sf.values) > 0 {
		return sf
	}
	for _, v := range values {
		sf.values[v] = struct{}{}
	}
	return sf
}

// List returns the set values, sorted.
func (sf *SetFlag) List() []string {
	values := make([]string, 0, len(sf.values))
	for k := range sf.values {
		values = append(values, k)
	}
	slices.Sort(values)
	return values
}

func (sf *SetFlag) String() string {
	return strings.Join(sf.List(), ",")
}

func (sf *SetFlag) Set(value string) error {
	values := strings.Split(value, ",")
	for i, str := range values {
		values[i] = strings.TrimSpace(str)
	}
	for _, value := range values {
		if _, exists := sf.options[value]; !exists {
			return fmt.Errorf("unsupported value '%s'; options are %s", value, strings.Join(sf.optionList(), ", "))
		}
		sf.values[value] = struct{}{}
	}
	return nil
}

func (sf *SetFlag) optionList() []string {
	opts := make([]string, 0, len(sf.options))
	for k := range sf.options {
		opts = append(opts, k)
	}
	slices.Sort(opts)
	return opts
}
