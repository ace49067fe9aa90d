package main

import "github.com/packagewjx/process-risk/cmd"

func main() {
	cmd.Execute()
}
