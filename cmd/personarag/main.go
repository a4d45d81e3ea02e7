package main

import "personarag/internal/cli"

func main() {
	cli.Execute()
}
