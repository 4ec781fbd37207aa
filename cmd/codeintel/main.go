// Command codeintel is the entry point for the local code-intelligence
// indexing and retrieval core.
package main

import "github.com/cortexlocal/codeintel/internal/cli"

func main() {
	cli.Execute()
}
