package main

import "github.com/mcoot/edugames/internal/cli"

func main() {
	cli.Execute()
}
