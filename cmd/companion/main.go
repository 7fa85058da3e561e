package main

import "github.com/forgeai/companion/internal/cli"

func main() {
	cli.Execute()
}
