package main

import "commenthub/cmd/cli/command"

func main() {
	command.Execute()
}
