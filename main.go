package main

import (
	"os"

	"github.com/heliotrace/heliotrace/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "heliotrace"
	app.Usage = "compute per-face solar exposure using shadow-ray casting"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "list-devices",
			Usage:  "list available opencl devices",
			Action: cmd.ListDevices,
		},
		{
			Name:  "bench",
			Usage: "benchmark the analysis over a synthetic scene",
			Description: `
Generate a grid of upward-facing analysis faces under randomly placed occluder
slabs, analyze it for a sweep of sun directions and report ray throughput.`,
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "grid-side",
					Value: 128,
					Usage: "analysis face grid side length",
				},
				cli.IntFlag{
					Name:  "occluders",
					Value: 256,
					Usage: "number of random occluder slabs",
				},
				cli.IntFlag{
					Name:  "sun-samples",
					Value: 64,
					Usage: "number of sun direction samples",
				},
				cli.Int64Flag{
					Name:  "seed",
					Value: 1,
					Usage: "seed for the occluder placement",
				},
				cli.BoolFlag{
					Name:  "cpu",
					Usage: "force the pure-Go cpu tracer",
				},
				cli.StringFlag{
					Name:  "device, d",
					Usage: "only use opencl devices whose names contain this value",
				},
				cli.StringFlag{
					Name:  "kernel, k",
					Usage: "override the device program path",
				},
			},
			Action: cmd.Bench,
		},
	}

	app.Run(os.Args)
}
