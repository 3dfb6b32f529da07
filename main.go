package main

import "github.com/brk3/habitflow/cmd"

func main() {
	cmd.Execute()
}
