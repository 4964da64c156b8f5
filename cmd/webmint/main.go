// Package main provides the webmint CLI application.
package main

import (
	"log"
	"os"

	"github.com/webmint-project/webmint/internal/cli"
)

func main() {
	app := cli.NewApp()

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
