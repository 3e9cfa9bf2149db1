package main

import "veridia_hiring/internal/cli"

func main() {
	cli.Execute()
}
