package main

import "github.com/fatoora-app/fatoora/internal/cli"

func main() {
	cli.Execute()
}
