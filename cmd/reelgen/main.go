package main

import "reelgen/internal/cli"

func main() {
	cli.Execute()
}
