// Command sqlfrontdump reads a SQL file and prints every diagnostic
// the frontend produces. It contains no algorithmic logic of its own
// — it exists to demonstrate the Compile contract from the command
// line.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/repr"

	frontend "github.com/sqlcore/frontend"
	"github.com/sqlcore/frontend/frontendcfg"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: sqlfrontdump <file.sql> [-tree]")
		os.Exit(2)
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, "sqlfrontdump:", err)
		os.Exit(1)
	}

	result := frontend.Compile(string(data), frontendcfg.Default())

	for _, d := range result.Diagnostics {
		fmt.Println(d.String())
	}

	if len(os.Args) > 2 && os.Args[2] == "-tree" {
		repr.Println(result.Tree)
	}

	if !result.Ok() {
		os.Exit(1)
	}
}
