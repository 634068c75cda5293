package main

import "github.com/tranvictor/ajer/cmd"

func main() {
	cmd.Execute()
}
