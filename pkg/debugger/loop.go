package debugger

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"
)

// Prompt is shown before every command line
const Prompt = "(rvdb) "

// LineReader reads command lines. Prompt returns io.EOF at end of input.
type LineReader interface {
	Prompt(prompt string) (string, error)
	Close() error
}

type linerReader struct {
	state       *liner.State
	historyPath string
	logger      *slog.Logger
}

func (r *linerReader) Prompt(prompt string) (string, error) {
	line, err := r.state.Prompt(prompt)
	if err == nil && strings.TrimSpace(line) != "" {
		r.state.AppendHistory(line)
	}
	return line, err
}

func (r *linerReader) Close() error {
	if r.historyPath != "" {
		if err := saveHistory(r.state, r.historyPath); err != nil {
			r.logger.Debug("could not save history", "path", r.historyPath, "error", err)
		}
	}
	return r.state.Close()
}

func saveHistory(state *liner.State, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := state.WriteHistory(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func loadHistory(state *liner.State, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = state.ReadHistory(file)
	return err
}

type plainReader struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewPlainReader reads lines from r without line editing. The prompt is
// written to out when out is not nil.
func NewPlainReader(r io.Reader, out io.Writer) LineReader {
	return &plainReader{scanner: bufio.NewScanner(r), out: out}
}

func (r *plainReader) Prompt(prompt string) (string, error) {
	if r.out != nil {
		fmt.Fprint(r.out, prompt)
	}
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.scanner.Text(), nil
}

func (r *plainReader) Close() error {
	return nil
}

// NewLineReader returns a line editor with history and command completion
// when stdin is a terminal, and a plain reader otherwise. History is loaded
// from and saved to historyPath when it is not empty.
func (d *Debugger) NewLineReader(historyPath string) LineReader {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return NewPlainReader(os.Stdin, nil)
	}

	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	state.SetCompleter(d.Complete)

	if historyPath != "" {
		if err := loadHistory(state, historyPath); err != nil {
			d.logger.Debug("could not load history", "path", historyPath, "error", err)
		}
	}

	return &linerReader{state: state, historyPath: historyPath, logger: d.logger}
}

// Run reads and executes commands until the quit command or end of input
func (d *Debugger) Run(reader LineReader) error {
	for {
		line, err := reader.Prompt(Prompt)
		switch {
		case errors.Is(err, io.EOF):
			fmt.Fprintln(d.out)
			return nil
		case errors.Is(err, liner.ErrPromptAborted):
			colorWarning.Fprintln(d.out, f("Use 'q' to leave the debugger."))
			continue
		case err != nil:
			return err
		}

		if d.Execute(line) {
			return nil
		}
	}
}

// RunBatch runs the program to completion without reading any command
func (d *Debugger) RunBatch() {
	d.Execute("c")
}
