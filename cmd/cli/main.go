package main

import (
	"os"

	"github.com/wakeupnow/wakeup/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
