// Command wawi manages products and customers from the command line.
package main

import "github.com/mesh-intelligence/wawi/internal/cli"

func main() {
	cli.Execute()
}
