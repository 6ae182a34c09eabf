// ./main.go
package main

import (
	"github.com/xkilldash9x/snakepilot/cmd"
)

// main is the entry point for the snakepilot CLI.
func main() {
	cmd.Execute()
}
