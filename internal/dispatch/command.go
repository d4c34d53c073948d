package dispatch

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Command identifies a registered command.
type Command int

const (
	// CommandInit creates a new project from a template.
	CommandInit Command = iota + 1
)

// Descriptor names the package that implements a command.
type Descriptor struct {
	Name    string
	Package string
	// Version is a selector: "latest", "^1.2.0" or an exact version.
	Version string
}

var commands = map[Command]Descriptor{
	CommandInit: {Name: "init", Package: "@imooc-cli/init", Version: "latest"},
}

// Descriptor returns the registration of c.
func (c Command) Descriptor() (Descriptor, bool) {
	d, ok := commands[c]
	return d, ok
}

func (c Command) String() string {
	if d, ok := commands[c]; ok {
		return d.Name
	}
	return fmt.Sprintf("Command(%d)", int(c))
}

// Commands returns every registered command, sorted by name.
func Commands() []Descriptor {
	out := make([]Descriptor, 0, len(commands))
	for _, d := range commands {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ConfigError reports a command name with no registered package.
type ConfigError struct {
	Command     string
	Suggestions []string
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("no package registered for command %q", e.Command)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

// ParseCommand looks up a command by name.
func ParseCommand(name string) (Command, error) {
	names := make([]string, 0, len(commands))
	for c, d := range commands {
		if d.Name == name {
			return c, nil
		}
		names = append(names, d.Name)
	}
	sort.Strings(names)

	var suggestions []string
	for _, m := range fuzzy.Find(name, names) {
		suggestions = append(suggestions, m.Str)
	}
	return 0, &ConfigError{Command: name, Suggestions: suggestions}
}
