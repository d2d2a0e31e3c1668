package main

import "github.com/oshokin/desktop-packager/cmd/desktop-packager/cmd"

func main() {
	cmd.Execute()
}
