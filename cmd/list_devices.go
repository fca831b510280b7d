package cmd

import (
	"bytes"
	"fmt"

	"github.com/heliotrace/heliotrace/trace/opencl/device"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// List available opencl devices.
func ListDevices(ctx *cli.Context) error {
	setupLogging(ctx)

	clPlatforms, err := device.GetPlatformInfo()
	if err != nil {
		logger.Error(err)
		return err
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Platform", "Device", "Type", "Speed (GFlops)"})
	for _, platformInfo := range clPlatforms {
		for _, dev := range platformInfo.Devices {
			table.Append([]string{
				fmt.Sprintf("%s (%s)", platformInfo.Name, platformInfo.Version),
				dev.Name,
				dev.Type.String(),
				fmt.Sprintf("%d", dev.Speed),
			})
		}
	}
	table.Render()

	logger.Noticef("system provides %d opencl platform(s)\n%s", len(clPlatforms), buf.String())
	return nil
}
