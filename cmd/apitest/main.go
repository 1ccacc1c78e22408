package main

import "apitest/internal/cli"

func main() {
	cli.Execute()
}
