package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/photogallery/internal/client/cli"
	"github.com/dmitrijs2005/photogallery/internal/client/config"
	"github.com/dmitrijs2005/photogallery/internal/logging"
)

type commandContext struct {
	configFlag *string
	serverFlag *string
	outputFlag *string
	dataFlag   *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, serverFlag, outputFlag, dataFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		serverFlag: serverFlag,
		outputFlag: outputFlag,
		dataFlag:   dataFlag,
	}
}

// ensureConfig loads defaults, the config file and the environment once,
// then applies the flags the user actually set.
func (c *commandContext) ensureConfig(cmd *cobra.Command) (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.LoadConfig(strings.TrimSpace(*c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		flags := cmd.Flags()
		if flags.Changed("server") {
			cfg.ServerURL = *c.serverFlag
		}
		if flags.Changed("output") {
			cfg.OutputDir = *c.outputFlag
		}
		if flags.Changed("data") {
			cfg.DataFile = *c.dataFlag
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) newApp(cmd *cobra.Command) (*cli.App, error) {
	cfg, err := c.ensureConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := logging.New(cmd.ErrOrStderr(), "warn")
	return cli.NewApp(cmd.Context(), cfg, logger)
}
