// Command sigma runs one interactive Σ-protocol proof between a prover
// and a verifier, over TCP or in-process, from a shared TOML config.
package main

import (
	"fmt"
	"net"
	"os"

	cli "github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/provelab/sigma/internal/log"
	"github.com/provelab/sigma/pkg/comm"
	"github.com/provelab/sigma/pkg/protocol"
	"github.com/provelab/sigma/pkg/sigma"
)

var (
	configFlag = &cli.StringFlag{
		Name:     "config",
		Usage:    "Path to the TOML protocol config",
		Required: true,
	}
	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Enable debug logging",
	}
)

func main() {
	app := &cli.App{
		Name:  "sigma",
		Usage: "interactive sigma-protocol prover and verifier",
		Commands: []*cli.Command{
			proveCmd,
			verifyCmd,
			demoCmd,
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %+v\n", err)
		os.Exit(1)
	}
}

func setup(cctx *cli.Context) (*Config, log.Logger, error) {
	logger := log.New(cctx.Bool(debugFlag.Name))
	cfg, err := LoadConfig(cctx.String(configFlag.Name))
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

var proveCmd = &cli.Command{
	Name:  "prove",
	Usage: "connect to a verifier and prove knowledge of the configured witness",
	Flags: []cli.Flag{configFlag, debugFlag},
	Action: func(cctx *cli.Context) error {
		cfg, logger, err := setup(cctx)
		if err != nil {
			return err
		}
		logger = logger.Named("prover")

		grp, err := cfg.BuildGroup()
		if err != nil {
			return err
		}
		if err := grp.Validate(); err != nil {
			return err
		}
		prover, input, err := cfg.BuildProver(grp)
		if err != nil {
			return err
		}

		conn, err := net.Dial("tcp", cfg.Net.Address)
		if err != nil {
			return fmt.Errorf("dial verifier: %w", err)
		}
		defer conn.Close()
		logger.Infow("connected", "address", cfg.Net.Address, "protocol", cfg.Protocol, "group", grp.Name())

		channel := protocol.NewChannel(comm.NewConn(conn), cfg.SessionID(grp), "prover", "verifier")
		if err := sigma.NewProtocolProver(channel, prover).Prove(input); err != nil {
			return err
		}
		logger.Infow("proof sent")
		return nil
	},
}

var verifyCmd = &cli.Command{
	Name:  "verify",
	Usage: "accept one prover connection and verify its proof",
	Flags: []cli.Flag{configFlag, debugFlag},
	Action: func(cctx *cli.Context) error {
		cfg, logger, err := setup(cctx)
		if err != nil {
			return err
		}
		logger = logger.Named("verifier")

		grp, err := cfg.BuildGroup()
		if err != nil {
			return err
		}
		verifier, common, err := cfg.BuildVerifier(grp)
		if err != nil {
			return err
		}

		listener, err := net.Listen("tcp", cfg.Net.Address)
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		defer listener.Close()
		logger.Infow("waiting for prover", "address", cfg.Net.Address, "protocol", cfg.Protocol, "group", grp.Name())

		conn, err := listener.Accept()
		if err != nil {
			return fmt.Errorf("accept: %w", err)
		}
		defer conn.Close()

		channel := protocol.NewChannel(comm.NewConn(conn), cfg.SessionID(grp), "verifier", "prover")
		ok, err := sigma.NewProtocolVerifier(channel, verifier).Verify(common)
		if err != nil {
			return err
		}
		if ok {
			logger.Infow("proof accepted")
		} else {
			logger.Errorw("proof rejected")
		}
		return nil
	},
}

var demoCmd = &cli.Command{
	Name:  "demo",
	Usage: "run prover and verifier in-process over a pipe",
	Flags: []cli.Flag{configFlag, debugFlag},
	Action: func(cctx *cli.Context) error {
		cfg, logger, err := setup(cctx)
		if err != nil {
			return err
		}

		grp, err := cfg.BuildGroup()
		if err != nil {
			return err
		}
		if err := grp.Validate(); err != nil {
			return err
		}
		prover, input, err := cfg.BuildProver(grp)
		if err != nil {
			return err
		}
		verifier, common, err := cfg.BuildVerifier(grp)
		if err != nil {
			return err
		}

		ssid := cfg.SessionID(grp)
		proverSide, verifierSide := comm.Pipe()
		var g errgroup.Group
		g.Go(func() error {
			channel := protocol.NewChannel(proverSide, ssid, "prover", "verifier")
			return sigma.NewProtocolProver(channel, prover).Prove(input)
		})
		var accepted bool
		g.Go(func() error {
			channel := protocol.NewChannel(verifierSide, ssid, "verifier", "prover")
			ok, err := sigma.NewProtocolVerifier(channel, verifier).Verify(common)
			accepted = ok
			return err
		})
		if err := g.Wait(); err != nil {
			return err
		}
		if !accepted {
			logger.Errorw("proof rejected", "protocol", cfg.Protocol)
			return fmt.Errorf("proof rejected")
		}
		logger.Infow("proof accepted", "protocol", cfg.Protocol, "group", grp.Name(), "t", cfg.T)
		return nil
	},
}
