package main

import (
	"fmt"
	"os"

	"github.com/darkit/schedule/cmd/schedule/check"
	"github.com/darkit/schedule/cmd/schedule/next"
	"github.com/darkit/schedule/cmd/schedule/root"
	"github.com/darkit/schedule/cmd/schedule/serve"
)

func main() {
	rootCmd := root.GetRoot()
	rootCmd.AddCommand(next.NewCommand(), check.NewCommand(), serve.NewCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
