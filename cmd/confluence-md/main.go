package main

import (
	"fmt"
	"os"

	"github.com/goliatone/go-confluence/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "confluence-md:", err)
		os.Exit(1)
	}
}
