// =============================================================================
// help.go - Help System
// =============================================================================
//
// This file implements the REPL help system:
//   - ".help"         Full listing of dot-commands and line commands
//   - ".help <topic>" Detailed help for one command or topic
//   - ".commands"     The command table of the active dispatcher
//
// Help text lives in two places. Dot-commands and general topics are in the
// dotHelp and topicHelp dictionaries below. Line commands (set, alert, ...)
// are described by their fieldproto.CommandSpec, so a command registered on
// the dispatcher is documented without touching this file.
//
// =============================================================================

package main

// GO CONCEPT: Map Literals for Lookup Tables
// -------------------------------------------
// map[string]string literals make compact lookup tables:
//
//	value, ok := myMap[key]
//
// ok is false (and value "") when the key is missing.
import (
	"fmt"
	"io"
	"strings"

	"github.com/fieldsh/fieldsh/fieldproto"
)

// dotHelp documents the REPL's local dot-commands.
var dotHelp = map[string]string{
	"help": `  .help [topic]
    Show help for all commands, or detailed help for one command or topic.
    Examples:
      .help           Show the full listing
      .help set       Show detailed help for the set command
      .help fields    Explain how a line is split into fields`,

	"commands": `  .commands
    List the commands the dispatcher accepts, in match order, with the
    number of arguments each one requires.`,

	"quit": `  .quit
    Exit fieldsh. A server started by this session is stopped.`,
}

// topicHelp documents the line grammar.
var topicHelp = map[string]string{
	"fields": `  Fields
    A line holds at most 80 characters; anything typed past that is
    dropped. Letters and digits form fields; every other character
    (space, punctuation, tab) separates them. At most 5 fields are kept.
    A field starting with a letter is alpha, one starting with a digit is
    numeric. The first field is the command verb.
    Examples:
      set 3 4         verb "set", numeric 3, numeric 4
      set,3;4         the same three fields
      alert hello     verb "alert", alpha "hello"`,

	"numbers": `  Numbers
    Numeric fields are unsigned decimal. Parsing stops at the first
    non-digit, so "12ab" reads as 12. There is no sign: "-5" is a
    separator followed by 5. An alpha field read as a number gives 0.`,

	"errors": `  Errors
    A line whose verb is unknown, or that has too few arguments, answers
    "Invalid Command". Verbs are case-sensitive and must match exactly.`,
}

// printHelp writes the full listing when topic is empty, otherwise the
// detailed help for topic. Unknown topics are reported on errOut.
func printHelp(out, errOut io.Writer, commands []fieldproto.CommandSpec, topic string) {
	if topic == "" {
		printHelpOverview(out, commands)
		return
	}

	// ".help .quit" works the same as ".help quit". Verbs are matched
	// exactly, as the dispatcher matches them.
	key := strings.TrimPrefix(topic, ".")

	for _, c := range commands {
		if c.Verb == key {
			fmt.Fprintln(out, commandHelp(c))
			return
		}
	}

	lower := strings.ToLower(key)
	if text, ok := dotHelp[lower]; ok {
		fmt.Fprintln(out, text)
		return
	}
	if text, ok := topicHelp[lower]; ok {
		fmt.Fprintln(out, text)
		return
	}

	fmt.Fprintf(errOut, "Error: No help for '%s'. Type .help to see available commands.\n", topic)
}

// printHelpOverview writes the full command listing.
func printHelpOverview(out io.Writer, commands []fieldproto.CommandSpec) {
	fmt.Fprint(out, `REPL Commands:
  .help [topic]     Show help (or help for a specific command or topic)
  .commands         List the dispatcher's commands
  .quit             Exit fieldsh
`)

	fmt.Fprint(out, "\nLine Commands:\n")
	for _, c := range commands {
		fmt.Fprintf(out, "  %-17s %s\n", usage(c), c.Summary)
	}

	fmt.Fprint(out, `
Topics:
  fields            How a line is split into fields
  numbers           How numeric fields are read
  errors            When a line answers "Invalid Command"
`)
}

// printCommands writes the dispatcher's command table in match order.
func printCommands(out io.Writer, commands []fieldproto.CommandSpec) {
	if len(commands) == 0 {
		fmt.Fprintln(out, "No commands registered.")
		return
	}
	for _, c := range commands {
		fmt.Fprintf(out, "  %-8s %d arg%s\n", c.Verb, c.MinArgs, plural(c.MinArgs))
	}
}

// commandHelp formats the detailed help for one line command.
func commandHelp(c fieldproto.CommandSpec) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  %s\n", usage(c))
	if c.Summary != "" {
		fmt.Fprintf(&b, "    %s.\n", c.Summary)
	}
	fmt.Fprintf(&b, "    Requires at least %d argument%s after the verb.", c.MinArgs, plural(c.MinArgs))
	return b.String()
}

func usage(c fieldproto.CommandSpec) string {
	if c.Usage != "" {
		return c.Usage
	}
	return c.Verb
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
