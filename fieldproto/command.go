package fieldproto

import (
	"strconv"
	"sync"
)

// Handler runs a matched command against a parsed line.
type Handler func(l *Line) Response

// CommandSpec describes one verb of the command surface.
type CommandSpec struct {
	// Verb is compared exactly against field 0 of a line.
	Verb string
	// MinArgs is the number of fields required after the verb.
	MinArgs int
	// Usage is a one-line synopsis, e.g. "set <a> <b>".
	Usage string
	// Summary describes what the command does.
	Summary string
	Handler Handler
}

// Dispatcher matches parsed lines against an ordered list of commands.
//
// The first registered command whose verb and argument count match wins.
// Dispatch is safe for concurrent use.
type Dispatcher struct {
	mu       sync.RWMutex
	commands []CommandSpec
}

// NewDispatcher creates a dispatcher with the given commands. It panics if
// a spec is invalid; use Register to handle the error instead.
func NewDispatcher(specs ...CommandSpec) *Dispatcher {
	d := &Dispatcher{}
	for _, spec := range specs {
		if err := d.Register(spec); err != nil {
			panic(err)
		}
	}
	return d
}

// NewDefaultDispatcher creates a dispatcher with DefaultCommands.
func NewDefaultDispatcher() *Dispatcher {
	return NewDispatcher(DefaultCommands()...)
}

// Register appends a command. The verb must be a non-empty run of ASCII
// letters and digits starting with a letter, no longer than MaxChars, and
// not already registered.
func (d *Dispatcher) Register(spec CommandSpec) error {
	if err := validateVerb(spec.Verb); err != nil {
		return err
	}
	if spec.MinArgs < 0 || spec.MinArgs > MaxFields-1 {
		return newInvalidVerbError(spec.Verb, "minimum arguments out of range")
	}
	if spec.Handler == nil {
		return newMissingArgumentError("command " + spec.Verb + " requires a handler")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, c := range d.commands {
		if c.Verb == spec.Verb {
			return newDuplicateVerbError(spec.Verb)
		}
	}
	d.commands = append(d.commands, spec)
	return nil
}

func validateVerb(verb string) error {
	switch {
	case verb == "":
		return newInvalidVerbError(verb, "empty")
	case len(verb) > MaxChars:
		return newInvalidVerbError(verb, "longer than a line")
	case !isAlpha(verb[0]):
		return newInvalidVerbError(verb, "must start with a letter")
	}
	for i := 1; i < len(verb); i++ {
		if !isAlnum(verb[i]) {
			return newInvalidVerbError(verb, "must be alphanumeric")
		}
	}
	return nil
}

// Commands returns a copy of the registered commands in match order.
func (d *Dispatcher) Commands() []CommandSpec {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]CommandSpec, len(d.commands))
	copy(out, d.commands)
	return out
}

// Lookup returns the command registered for verb.
func (d *Dispatcher) Lookup(verb string) (CommandSpec, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, c := range d.commands {
		if c.Verb == verb {
			return c, true
		}
	}
	return CommandSpec{}, false
}

// Dispatch runs the first command matching the parsed line. The line must
// have been parsed. Unmatched lines answer InvalidCommandMessage.
func (d *Dispatcher) Dispatch(l *Line) Response {
	d.mu.RLock()
	var handler Handler
	for _, c := range d.commands {
		if l.IsCommand(c.Verb, c.MinArgs) {
			handler = c.Handler
			break
		}
	}
	d.mu.RUnlock()

	if handler == nil {
		return NewInvalidCommandResponse()
	}
	return handler(l)
}

// Execute loads text into a fresh line, parses and dispatches it.
func (d *Dispatcher) Execute(text string) Response {
	var l Line
	l.Load(text)
	l.Parse()
	return d.Dispatch(&l)
}

// DefaultCommands returns the built-in command surface: set and alert.
func DefaultCommands() []CommandSpec {
	return []CommandSpec{
		{
			Verb:    "set",
			MinArgs: 2,
			Usage:   "set <a> <b>",
			Summary: "Add two numbers and report the sum",
			Handler: setCommand,
		},
		{
			Verb:    "alert",
			MinArgs: 1,
			Usage:   "alert <text>",
			Summary: "Echo the first argument",
			Handler: alertCommand,
		},
	}
}

// setCommand adds fields 1 and 2. Non-numeric fields count as 0.
func setCommand(l *Line) Response {
	sum := int64(l.FieldInteger(1)) + int64(l.FieldInteger(2))
	return NewOKResponse("set: " + strconv.FormatInt(sum, 10))
}

func alertCommand(l *Line) Response {
	text, _ := l.FieldString(1)
	return NewOKResponse("alert: " + text)
}
