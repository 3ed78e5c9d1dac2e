package main

import "github.com/jsphweid/harmonseq/cmd"

func main() {
	cmd.Execute()
}
