package main

import "prompt-cms/cmd"

func main() {
	cmd.Execute()
}
