package main

import "workforce/internal/cli"

func main() {
	cli.Execute()
}
