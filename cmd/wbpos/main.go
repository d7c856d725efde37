package main

import "github.com/wbpos/backend/cmd/wbpos/cmd"

func main() {
	cmd.Execute()
}
