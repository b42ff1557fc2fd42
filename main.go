package main

import "github.com/devicelab-dev/katalon-recorder/pkg/cli"

func main() {
	cli.Execute()
}
