package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"

	"github.com/mcncl/wirevalue/faults"
	"github.com/mcncl/wirevalue/field"
	"github.com/mcncl/wirevalue/values"
	"github.com/mcncl/wirevalue/wire"
)

// CLI defines the command-line interface
var CLI struct {
	Input       string `help:"Path to input wire JSON file. If not specified, reads from stdin." short:"i" type:"path"`
	Output      string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	Path        string `help:"Dot-separated path to extract before printing, e.g. data.0.name." short:"p"`
	Render      bool   `help:"Print the typed value rendering instead of wire JSON." short:"r"`
	Compact     bool   `help:"Emit compact wire JSON instead of indented." short:"c"`
	Debug       bool   `help:"Enable debug logging." short:"d"`
	Version     bool   `help:"Show version information." short:"v"`
	Interactive bool   `help:"Run in interactive mode, allowing direct JSON input with Ctrl+D to process." short:"I"`
}

// Version information
const (
	Version = "0.1.0"
)

func main() {
	parser := kong.Must(&CLI,
		kong.Name("wirevalue"),
		kong.Description("Decode, inspect, and re-encode tagged wire JSON"),
		kong.UsageOnError(),
	)

	// With no arguments and an interactive terminal, default to paste mode.
	if len(os.Args) == 1 {
		CLI.Interactive = true
	}

	if _, err := parser.Parse(os.Args[1:]); err != nil {
		// kong.UsageOnError() already printed the usage.
		os.Exit(1)
	}

	if CLI.Version {
		fmt.Printf("wirevalue version %s\n", Version)
		return
	}

	log := newLogger(CLI.Debug)
	if err := run(log); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", faults.UserFriendly(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: wirevalue --help\n")
		os.Exit(1)
	}
}

func newLogger(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

// run executes the main program logic
func run(log zerolog.Logger) error {
	raw, err := readInput()
	if err != nil {
		return err
	}

	value, err := wire.DecodeString(raw)
	if err != nil {
		return err
	}
	log.Debug().Str("kind", value.Kind()).Msg("decoded wire value")

	if CLI.Path != "" {
		extracted, err := extractPath(value, CLI.Path)
		if err != nil {
			return err
		}
		value = extracted
		log.Debug().Str("path", CLI.Path).Str("kind", value.Kind()).Msg("extracted path")
	}

	out, err := renderOutput(value)
	if err != nil {
		return err
	}
	return writeOutput(out)
}

// extractPath walks a dot-separated path against the decoded value. A purely
// numeric segment is an array index, anything else an object key.
func extractPath(v values.Value, path string) (values.Value, error) {
	var segments []field.Segment
	for _, part := range strings.Split(path, ".") {
		if idx, err := strconv.Atoi(part); err == nil {
			segments = append(segments, field.Index(idx))
		} else {
			segments = append(segments, field.Key(part))
		}
	}
	return field.AtPath(segments...).Get(v).Get()
}

func renderOutput(v values.Value) (string, error) {
	if CLI.Render {
		return v.String(), nil
	}
	var encoded []byte
	var err error
	if CLI.Compact {
		encoded, err = wire.Encode(v)
	} else {
		encoded, err = wire.EncodeIndent(v, "", "  ")
	}
	if err != nil {
		return "", faults.Output("failed to encode wire value", err)
	}
	return string(encoded), nil
}

// readInput reads wire JSON from file or stdin
func readInput() (string, error) {
	if CLI.Input != "" {
		return readFile(CLI.Input)
	}

	stdinInfo, err := os.Stdin.Stat()
	if err != nil {
		return "", faults.Input("failed to access stdin", err)
	}

	if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
		if CLI.Interactive {
			return readInteractiveInput()
		}
		return "", faults.Input("no input provided", faults.ErrNoInput)
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", faults.Input("failed to read from stdin", err)
	}
	if len(data) == 0 {
		return "", faults.Input("empty input received from stdin", faults.ErrEmptyInput)
	}
	return string(data), nil
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", faults.Input(fmt.Sprintf("file '%s' not found", path), faults.ErrFileNotFound)
		}
		return "", faults.Input(fmt.Sprintf("failed to read file '%s'", path), err)
	}
	if len(data) == 0 {
		return "", faults.Input(fmt.Sprintf("input file '%s' is empty", path), faults.ErrFileEmpty)
	}
	return string(data), nil
}

// writeOutput writes the rendered value to file or stdout
func writeOutput(out string) error {
	if CLI.Output != "" {
		if err := os.WriteFile(CLI.Output, []byte(out+"\n"), 0644); err != nil {
			return faults.Output(fmt.Sprintf("failed to write to file '%s'", CLI.Output), err)
		}
		fmt.Fprintf(os.Stderr, "Output written to %s\n", CLI.Output)
		return nil
	}
	if _, err := fmt.Println(out); err != nil {
		return faults.Output("failed to write to stdout", err)
	}
	return nil
}

// readInteractiveInput provides an interactive mode for users to paste wire
// JSON and signal completion with Ctrl+D (EOF)
func readInteractiveInput() (string, error) {
	fmt.Fprintln(os.Stderr, "wirevalue Interactive Mode")
	fmt.Fprintln(os.Stderr, "Paste your wire JSON below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	reader := bufio.NewReader(os.Stdin)
	var builder strings.Builder
	for {
		line, err := reader.ReadString('\n')
		if err == io.EOF {
			builder.WriteString(line)
			break
		}
		if err != nil {
			return "", faults.Input("error reading input", err)
		}
		builder.WriteString(line)
	}

	input := builder.String()
	if len(strings.TrimSpace(input)) == 0 {
		return "", faults.Input("empty input received", faults.ErrEmptyInput)
	}

	fmt.Fprintln(os.Stderr, "\nProcessing wire JSON...")
	return input, nil
}
