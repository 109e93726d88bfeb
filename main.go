package main

import "bundle-localizer/internal/cli"

func main() {
	cli.Execute()
}
