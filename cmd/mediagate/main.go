package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	root := newRootCommand()
	err := root.Execute()
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		// Interrupted by the user; nothing worth printing.
		os.Exit(130)
	}
	fmt.Fprintln(os.Stderr, "mediagate:", err)
	os.Exit(1)
}
