package main

import (
	"os"

	"bsab/pkg/app"

	"github.com/urfave/cli"
)

func main() {
	cli.HandleExitCoder(app.Run(os.Args[1:], os.Stdout, os.Stderr))
}
