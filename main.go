package main

import (
	"os"

	"github.com/towalink/hostname2set/cmd/hostname2set"
)

func main() {
	os.Exit(hostname2set.Run())
}
