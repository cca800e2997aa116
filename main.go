package main

import "github.com/Rakhulsr/go-tours/app/cmd"

func main() {
	cmd.RunCli()
}
