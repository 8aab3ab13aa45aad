package main

import (
	"os"

	"github.com/joho/godotenv"
)

var (
	Version string = "development"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
