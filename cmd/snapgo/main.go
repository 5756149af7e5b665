package main

import (
	"fmt"
	"os"

	"github.com/snapgo/snapgo-site/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "snapgo: %v\n", err)
		os.Exit(1)
	}
}
