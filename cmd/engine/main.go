package main

import (
	"log"
	"os"
	"runtime/debug"

	"github.com/prezboard/engine/pkg/configuration"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	if err := execute(); err != nil {
		configuration.Use().Unload()
		os.Exit(1)
	}
	configuration.Use().Unload()
}
