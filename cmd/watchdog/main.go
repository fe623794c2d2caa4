package main

import (
	"os"

	"github.com/kbukum/watchdog/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
