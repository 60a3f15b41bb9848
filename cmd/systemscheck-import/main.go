package main

import "systemscheck/internal/cli"

func main() {
	cli.Execute()
}
