package main

import "github.com/tfkr-ae/taxreg/cmd"

func main() {
	cmd.Execute()
}
