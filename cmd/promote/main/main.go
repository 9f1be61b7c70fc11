package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/promote/cmd/promote"
	"github.com/arthur-debert/promote/pkg/ui/styles"
)

func main() {
	rootCmd := promote.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		if !promote.IsReported(err) {
			errorStyle := styles.GetStyle("Error")
			fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
		}
		os.Exit(1)
	}
}
