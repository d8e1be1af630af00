// The main package for the pagesnap executable.
package main

import (
	"github.com/pagesnap/pagesnap/cmd"
)

func main() {
	cmd.Execute()
}
