package main

import "github.com/lepinkainen/kindlecovers/cmd"

var execute = cmd.Execute

func main() {
	execute()
}
