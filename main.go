// ABOUTME: Entry point for the shelter-admin CLI
// ABOUTME: Admin dashboard and scriptable commands for the shelter network backend

package main

import (
	"fmt"
	"os"

	"github.com/markalston/shelter-admin/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
