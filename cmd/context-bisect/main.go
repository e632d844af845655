package main

import "context-bisect/internal/cli"

func main() {
	cli.Execute()
}
