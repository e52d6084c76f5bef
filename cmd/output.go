package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/ginjaninja78/bkhd-upsse-converter/internal/converter"
)

var (
	successSymbol = "✓"
	errorSymbol   = "✗"
	infoSymbol    = "→"

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00A86B", Dark: "#00D787"})
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#D7005F", Dark: "#FF5F87"})
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#005FD7", Dark: "#5FAFFF"})
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#008787", Dark: "#00D7D7"})
	optionStyle  = lipgloss.NewStyle().Bold(true)
)

func printSuccess(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", successStyle.Render(successSymbol), message)
}

func printError(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", errorStyle.Render(errorSymbol), errorStyle.Render(message))
}

func printInfof(w io.Writer, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(w, "%s %s\n", infoStyle.Render(infoSymbol), fmt.Sprintf(format, args...))
}

func printPath(w io.Writer, label, path string) {
	printSuccess(w, fmt.Sprintf("%s %s", label, pathStyle.Render(path)))
}

// printDateOptions explains an ambiguous date for non-interactive runs.
func printDateOptions(w io.Writer, options []converter.DateOption) {
	printInfof(w, "The transaction date is ambiguous. Rerun with one of:")
	for _, opt := range options {
		_, _ = fmt.Fprintf(w, "    --date %s   (%s)\n", optionStyle.Render(opt.Value), opt.Label)
	}
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// =============================================================================
// PROMPTS
// =============================================================================

// promptDate asks the user which reading of the date is right.
func promptDate(options []converter.DateOption) (string, error) {
	choices := make([]huh.Option[string], 0, len(options))
	for _, opt := range options {
		choices = append(choices, huh.NewOption(opt.Label, opt.Value))
	}

	var value string
	err := huh.NewSelect[string]().
		Title("The transaction date is ambiguous. Which one is right?").
		Options(choices...).
		Value(&value).
		Run()
	if err != nil {
		return "", fmt.Errorf("failed to read date choice: %w", err)
	}
	return value, nil
}

// promptLocation asks for the station when --location was not given.
func promptLocation(names []string) (string, error) {
	var value string
	err := huh.NewSelect[string]().
		Title("Location").
		Options(huh.NewOptions(names...)...).
		Value(&value).
		Run()
	if err != nil {
		return "", fmt.Errorf("failed to read location: %w", err)
	}
	return value, nil
}

// promptBoundary asks for the first invoice number of the new price period.
func promptBoundary() (string, error) {
	var value string
	err := huh.NewInput().
		Title("First invoice number at the new price").
		Value(&value).
		Run()
	if err != nil {
		return "", fmt.Errorf("failed to read boundary invoice: %w", err)
	}
	return value, nil
}
