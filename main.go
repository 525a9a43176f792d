package main

import "github.com/KaramelBytes/tickerloom-cli/cmd"

func main() {
	cmd.Execute()
}
