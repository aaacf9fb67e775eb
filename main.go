package main

import "github.com/aladdin-tools/build-components/cmd"

func main() {
	cmd.Execute()
}
