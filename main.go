package main

import "github.com/kamusis/acco/cmd"

func main() {
	cmd.Execute()
}
