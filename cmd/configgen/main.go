package main

import (
	"os"

	"github.com/danmuck/fbxtree/internal/config"
	"github.com/danmuck/fbxtree/internal/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

func main() {
	output := pflag.StringP("output", "o", "fbxtree.toml", "output path for the config template")
	validate := pflag.Bool("validate", false, "validate an existing config file")
	input := pflag.String("input", "fbxtree.toml", "config path for validation")
	force := pflag.Bool("force", false, "overwrite existing config file")
	pflag.Parse()

	logging.ConfigureRuntime()

	if *validate {
		if _, err := config.Load(*input); err != nil {
			log.Error().Err(err).Msg("configgen.validate")
			os.Exit(1)
		}
		log.Info().Str("path", *input).Msg("validated fbxtree config")
		return
	}

	if err := config.WriteTemplate(*output, *force); err != nil {
		log.Error().Err(err).Msg("configgen.write")
		os.Exit(1)
	}
	log.Info().Str("path", *output).Msg("wrote fbxtree config template")
}
