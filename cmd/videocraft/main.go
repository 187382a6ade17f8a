package main

import "github.com/videocraft/videocraft-core/internal/cli"

func main() {
	cli.Execute()
}
