package main

import "github.com/cweiss/showsync/cmd/showsync/cmd"

func main() {
	cmd.Execute()
}
