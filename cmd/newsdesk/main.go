package main

import (
	"os"

	"newsdesk/cmd/handlers"
)

func main() {
	if err := handlers.Execute(); err != nil {
		os.Exit(1)
	}
}
