package main

import "wordmark/cmd"

func main() {
	cmd.Execute()
}
