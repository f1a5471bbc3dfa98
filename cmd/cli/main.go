package main

import (
	"os"

	"booklake/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
