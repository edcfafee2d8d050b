package main

import (
	"log"

	corecmd "github.com/m3rciful/shopbot/core/cmd"
	"github.com/m3rciful/shopbot/internal/app"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		ConfigEnvVar: "CONFIG_PATH",
		LoadConfig:   app.Load,
		Bootstrap:    app.Bootstrap,
	})
	if err != nil {
		log.Fatal(err)
	}
}
