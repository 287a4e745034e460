// Command winbear observes an opaque build's process tree through the
// Win32 debug-event API and reconstructs a compile_commands.json
// compilation database from the compiler invocations it sees.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
