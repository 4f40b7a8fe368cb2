package main

import (
	"fmt"
	"os"

	"github.com/rshetty-99/ai-marketplace-sub008/apps/cli/root"
)

func main() {
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
