package main

import (
	"github.com/AtMostafa/bnd/cmd"
	"github.com/AtMostafa/bnd/cmd/util"
)

func main() {
	defer util.HandlePanic()
	cmd.Execute()
}
