package main

import "github.com/devtick/devtick/cmd"

func main() {
	cmd.Execute()
}
