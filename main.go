package main

import "github.com/khanhnv2901/webgrade/cmd"

var execCmd = cmd.Execute

func main() {
	execCmd()
}
