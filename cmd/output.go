package cmd

import (
	"fmt"
	"io"
	"os"
)

// Status icons shared by every command and the browse session.
const (
	iconOK   = "✓"
	iconErr  = "✗" // always written to stderr by printErr
	iconWarn = "⚠"
	iconSkip = "○" // not applicable, or nothing left to do
	iconMiss = "-" // no matching accountant, file or asset
	iconInfo = "~" // state change or acknowledgement
)

// fprintLine writes "  <icon>  msg", or "  <icon>  [name] msg" when name is
// set. Every status line in acco goes through here.
func fprintLine(w io.Writer, icon, name, msg string) {
	if name != "" {
		msg = "[" + name + "] " + msg
	}
	fmt.Fprintf(w, "  %s  %s\n", icon, msg)
}

// printSection starts a block of output, e.g. "=== acco doctor ===".
func printSection(title string) {
	fmt.Printf("\n=== %s ===\n", title)
}

// printBullet starts a group inside a section, e.g. "● Conflicts:".
func printBullet(title string) {
	fmt.Printf("\n● %s\n", title)
}

func printOK(name, msg string)   { fprintLine(os.Stdout, iconOK, name, msg) }
func printErr(name, msg string)  { fprintLine(os.Stderr, iconErr, name, msg) }
func printWarn(name, msg string) { fprintLine(os.Stdout, iconWarn, name, msg) }
func printSkip(name, msg string) { fprintLine(os.Stdout, iconSkip, name, msg) }
func printMiss(name, msg string) { fprintLine(os.Stdout, iconMiss, name, msg) }
func printInfo(name, msg string) { fprintLine(os.Stdout, iconInfo, name, msg) }
