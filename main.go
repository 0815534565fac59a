package main

import "github.com/nikogura/smartresume/cmd"

func main() {
	cmd.Execute()
}
