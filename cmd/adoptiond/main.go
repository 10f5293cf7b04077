// Command adoptiond runs the animal adoption API.
//
//	adoptiond serve [--migrate] [--seed]   start the HTTP server
//	adoptiond migrate up|down N|version    manage the PostgreSQL schema
//	adoptiond seed                         load demo data into an empty store
//
// Configuration comes from the environment (a .env file is loaded when
// present) with an optional TOML overlay named by CONFIG_FILE.
//
// @title          Animal Adoption API
// @version        1.0
// @description    Listings of adoptable animals and the adoption request lifecycle.
// @BasePath       /api/v1
package main

import (
	"os"

	"github.com/rs/zerolog/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("adoptiond failed")
		os.Exit(1)
	}
}
