package main

import "github.com/vito-c/nvim-icat/cmd/icat/cmd"

func main() {
	cmd.Execute()
}
