// Command scopesmapctl inspects and manipulates the scopes extension of
// JSON source maps from the shell.
package main

import "github.com/sourcemap-scopes/scopesmap/cmd/scopesmapctl/cmd"

func main() {
	cmd.Execute()
}
