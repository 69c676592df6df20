package main

import "shipward/internal/cli"

func main() {
	cli.Execute()
}
