package main

import "github.com/hkdywg/toolfetch/cmd"

func main() {
	cmd.Execute()
}
