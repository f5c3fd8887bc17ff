package cli

import (
	"errors"
	"fmt"
	"strings"
)

type Command string

const (
	CommandTUI     Command = "tui"
	CommandAsk     Command = "ask"
	CommandReindex Command = "reindex"
	CommandDevices Command = "devices"
	CommandDoctor  Command = "doctor"
	CommandVersion Command = "version"
	CommandHelp    Command = "help"
)

var validCommands = map[Command]struct{}{
	CommandTUI:     {},
	CommandAsk:     {},
	CommandReindex: {},
	CommandDevices: {},
	CommandDoctor:  {},
	CommandVersion: {},
	CommandHelp:    {},
}

type Parsed struct {
	Command    Command
	Query      string
	ConfigPath string
	ShowHelp   bool
}

// Parse resolves flags and the single command. No command launches the TUI.
func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandTUI}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-h", "--help":
			parsed.ShowHelp = true
			parsed.Command = CommandHelp
		case "--version":
			parsed.ShowHelp = false
			parsed.Command = CommandVersion
		case "--config":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--config requires a path")
			}
			parsed.ConfigPath = args[i]
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}

			cmd := Command(arg)
			if _, ok := validCommands[cmd]; !ok {
				return Parsed{}, fmt.Errorf("unknown command: %s", arg)
			}

			parsed.Command = cmd
			parsed.ShowHelp = cmd == CommandHelp

			if cmd == CommandAsk {
				query := strings.TrimSpace(strings.Join(args[i+1:], " "))
				if query == "" {
					return Parsed{}, errors.New("ask requires a query")
				}
				parsed.Query = query
				return parsed, nil
			}

			if i != len(args)-1 {
				return Parsed{}, fmt.Errorf("unexpected arguments after command %q", arg)
			}
		}
	}

	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] [command]

Commands:
  tui       Launch the interactive librarian (default)
  ask TEXT  Ask for a recommendation and print the result
  reindex   Rebuild the service's book index
  devices   List available input devices
  doctor    Run configuration and environment checks
  version   Print version information
  help      Show this help

Flags:
  --config PATH   Config file path (default: $XDG_CONFIG_HOME/librarian/config.env)
  -h, --help      Show help
  --version       Show version
`, binaryName)
}
