package main

import "darwinfetch/internal/darwinfetch"

func main() {
	darwinfetch.Main()
}
