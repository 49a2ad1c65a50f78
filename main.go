package main

import "github.com/fernfell/gridgen/cmd"

func main() {
	cmd.Execute()
}
