package main

import "github.com/barnabasJ/ash-ai/internal/cmd"

func main() {
	cmd.Execute()
}
