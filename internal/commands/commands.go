package commands

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"slices"
	"strings"
)

// legacyPrefix is accepted in front of any line so "cmd box -dx 5" and "box -dx 5" run the same command.
const legacyPrefix = "cmd "

// Command is a terminal command with its own flags and a Run function.
// Flags are defined on FlagSet; Run is called after Parse and can read flag state and the
// remaining positional arguments through FlagSet.Args.
type Command struct {
	Name    string
	Summary string
	FlagSet *flag.FlagSet
	Run     func() error
}

// Registry holds commands by name. Add commands with Register; run with Execute.
type Registry struct {
	cmds map[string]*Command
}

// NewRegistry returns an empty command registry.
func NewRegistry() *Registry {
	return &Registry{cmds: make(map[string]*Command)}
}

// NewFlagSet returns a FlagSet that reports errors instead of exiting and prints nothing.
// Errors are surfaced by Execute and usage by Help.
func NewFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// Register adds a command. name is the first token of a terminal line (e.g. "box").
// fs is that command's FlagSet; run is called after fs.Parse(args[1:]) succeeds.
func (r *Registry) Register(name, summary string, fs *flag.FlagSet, run func() error) {
	r.cmds[name] = &Command{Name: name, Summary: summary, FlagSet: fs, Run: run}
}

// Names returns the registered command names in alphabetical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.cmds))
	for n := range r.cmds {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Lookup returns the command registered under name.
func (r *Registry) Lookup(name string) (*Command, bool) {
	c, ok := r.cmds[name]
	return c, ok
}

// Parse tokenizes a terminal line by spaces, dropping an optional leading "cmd ".
// A blank line returns nil, false.
func Parse(line string) (args []string, ok bool) {
	line = strings.TrimSpace(line)
	if rest, found := strings.CutPrefix(line, legacyPrefix); found {
		line = strings.TrimSpace(rest)
	}
	if line == "" {
		return nil, false
	}
	return strings.Fields(line), true
}

// Execute runs the command in args[0] with args[1:] as flag/positional arguments.
// Returns an error for unknown command, parse error, or from Run(). "-h" returns the command's help text as the error.
func (r *Registry) Execute(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command")
	}
	name := args[0]
	cmd, ok := r.cmds[name]
	if !ok {
		return fmt.Errorf("unknown command: %s (try help)", name)
	}
	// Flags keep their values between runs; start every line from the defaults.
	cmd.FlagSet.VisitAll(func(f *flag.Flag) { _ = f.Value.Set(f.DefValue) })
	if err := cmd.FlagSet.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errors.New(r.Help(name))
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return cmd.Run()
}

// Help returns a usage block for one command: its summary followed by its flags.
func (r *Registry) Help(name string) string {
	cmd, ok := r.cmds[name]
	if !ok {
		return "unknown command: " + name
	}
	var b bytes.Buffer
	fmt.Fprintf(&b, "%s - %s", cmd.Name, cmd.Summary)
	cmd.FlagSet.VisitAll(func(f *flag.Flag) {
		fmt.Fprintf(&b, "\n  -%s (default %q) %s", f.Name, f.DefValue, f.Usage)
	})
	return b.String()
}
