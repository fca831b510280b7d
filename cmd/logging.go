package cmd

import (
	"github.com/heliotrace/heliotrace/log"
	"github.com/urfave/cli"
)

var logger = log.New("heliotrace")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}
