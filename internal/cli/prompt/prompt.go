// Package prompt provides interactive CLI prompts for user input.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/khendrix/saveguard/internal/errors"
)

// Sentinel errors for prompt interactions.
var (
	ErrNoItems            = errors.New("no items to select from")
	ErrInvalidSelection   = errors.New("invalid selection")
	ErrSelectionCancelled = errors.New("selection cancelled")
)

// Prompter handles interactive confirmation and selection prompts.
type Prompter struct {
	reader io.Reader
	writer io.Writer
}

// New creates a Prompter using stdin and stdout.
func New() *Prompter {
	return &Prompter{
		reader: os.Stdin,
		writer: os.Stdout,
	}
}

// NewWithIO creates a Prompter with custom reader and writer for testing.
func NewWithIO(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{
		reader: r,
		writer: w,
	}
}

// Confirm asks a yes/no question and returns the answer.
// The default is no: only "y" or "yes" (case-insensitive) confirm.
// EOF (e.g., Ctrl+D) counts as a refusal.
func (p *Prompter) Confirm(question string) (bool, error) {
	fmt.Fprintf(p.writer, "%s [y/N]: ", question)

	reader := bufio.NewReader(p.reader)
	input, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, errors.Wrap(err, "reading confirmation")
	}

	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Select prompts the user to choose from a numbered list of items.
//
// Returns:
//   - ErrNoItems if the list is empty
//   - Index 0 if only one item exists (auto-selects without prompting)
//   - The selected index based on user input
//   - ErrInvalidSelection if the selection is out of range
//   - ErrSelectionCancelled if input is EOF (e.g., Ctrl+D)
func (p *Prompter) Select(header string, items []string) (int, error) {
	if len(items) == 0 {
		return 0, ErrNoItems
	}

	// Auto-select if only one item
	if len(items) == 1 {
		return 0, nil
	}

	fmt.Fprintf(p.writer, "%s\n", header)
	for i, item := range items {
		fmt.Fprintf(p.writer, "  [%d] %s\n", i+1, item)
	}
	fmt.Fprintf(p.writer, "Select [1]: ")

	reader := bufio.NewReader(p.reader)
	input, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, ErrSelectionCancelled
		}
		return 0, errors.Wrap(err, "reading selection")
	}

	input = strings.TrimSpace(input)

	// Default to first option if empty
	if input == "" {
		return 0, nil
	}

	selection, err := strconv.Atoi(input)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidSelection, "%q is not a number", input)
	}

	// Validate range (1-indexed)
	if selection < 1 || selection > len(items) {
		return 0, errors.Wrapf(ErrInvalidSelection, "%d is out of range [1-%d]", selection, len(items))
	}

	return selection - 1, nil
}
