package main

import "github.com/mcoot/pcarrot/internal/cli"

func main() {
	cli.Execute()
}
