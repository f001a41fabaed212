package ui

import (
	"fmt"
	"io"
	"os"
)

// Out receives everything the print helpers write. Commands point it at
// cmd.OutOrStdout() so tests can capture output.
var Out io.Writer = os.Stdout

func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	Out = w
}

func writeLine(text string) {
	fmt.Fprintln(Out, text)
}

func Title(text string) {
	writeLine(TitleStyle.Render(text))
}

func Success(text string) {
	writeLine(SuccessStyle.Render("✓ " + text))
}

func Error(text string) {
	writeLine(ErrorStyle.Render("✗ " + text))
}

func Warning(text string) {
	writeLine(WarningStyle.Render("! " + text))
}

func Dim(text string) {
	writeLine(DimStyle.Render("  " + text))
}

// Box prints text in a bordered box.
func Box(text string) {
	writeLine(BoxStyle.Render(text))
}

func URL(text string) {
	writeLine(URLStyle.Render(text))
}

func Line() {
	writeLine("")
}

func Print(text string) {
	writeLine(text)
}

func RenderError(text string) string {
	return ErrorStyle.Render(text)
}

func RenderAccent(text string) string {
	return AccentStyle.Render(text)
}

// FormatBytes formats a size as B, KB, MB and so on.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
