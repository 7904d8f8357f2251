package main

import "github.com/snapkv/snapkv/internal/cli"

func main() {
	cli.Execute()
}
