package main

import "github.com/mountbook/mountbook/cmd"

func main() {
	cmd.Execute()
}
