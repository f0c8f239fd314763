package main

import (
	"os"
	"roombook/config"
	"roombook/helper"
	"roombook/shared/logger"

	"github.com/rs/zerolog/log"
)

const usage = "usage: migrate up|down|step-up|drop"

func main() {
	cfg := config.Get()

	logger.Init(cfg)

	if len(os.Args) < 2 { //nolint:mnd
		log.Fatal().Msg(usage)
	}

	action, err := helper.ParseAction(os.Args[1])
	if err != nil {
		log.Fatal().Err(err).Msg(usage)
	}

	if err = helper.Run(cfg, action); err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
}
