package main

import (
	"os"

	"github.com/mkrupp/newsletterhub/internal/cli"
)

func main() {
	os.Exit(cli.Main())
}
