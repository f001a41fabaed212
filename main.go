package main

import "github.com/sourcebox-llc/template-lab/cmd"

func main() {
	cmd.Execute()
}
