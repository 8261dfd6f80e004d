package main

import "bbndk/internal/bbndk"

func main() {
	bbndk.Main()
}
