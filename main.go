package main

import "github.com/packagewjx/form-classifier/cmd"

func main() {
	cmd.Execute()
}
