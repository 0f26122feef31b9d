package main

import commands "github.com/vladimir-rom/ringex/cmd"

func main() {
	commands.Execute()
}
