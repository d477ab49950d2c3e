package main

import (
	"context"
	"os"

	"github.com/pterm/pterm"
	"github.com/shu8h0-null/shopledger/core/config"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "ledgerctl",
		Usage: "inspect and administer a shopledger daemon",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "rpc",
				Value:   config.DefaultRPCAddr,
				Usage:   "address or URL of the ledger daemon",
				Sources: cli.EnvVars(config.EnvRPCAddr),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "latest",
				Usage:  "show the newest block",
				Action: latestAction,
			},
			{
				Name:  "blocks",
				Usage: "list every block",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "raw",
						Usage: "dump the blocks exactly as stored",
					},
				},
				Action: blocksAction,
			},
			{
				Name:      "history",
				Usage:     "show the purchases of one customer",
				ArgsUsage: "<sender>",
				Action:    historyAction,
			},
			{
				Name:   "transactions",
				Usage:  "show every sealed transaction with totals",
				Action: transactionsAction,
			},
			{
				Name:  "checkout",
				Usage: "record a purchase and seal it into a block",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "sender",
						Usage:    "customer display name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "items",
						Usage: "comma separated item names",
					},
					&cli.StringFlag{
						Name:  "text",
						Usage: "free-form item summary, used when --items is empty",
					},
					&cli.StringFlag{
						Name:     "total",
						Usage:    "amount in the smallest currency unit",
						Required: true,
					},
				},
				Action: checkoutAction,
			},
			{
				Name:   "backups",
				Usage:  "list backups, newest first",
				Action: backupsAction,
			},
			{
				Name:      "download",
				Usage:     "save a backup to a local file",
				ArgsUsage: "<name> <dest>",
				Action:    downloadAction,
			},
			{
				Name:      "restore",
				Usage:     "replace the live chain with a backup",
				ArgsUsage: "<name>",
				Action:    restoreAction,
			},
			{
				Name:      "import",
				Usage:     "replace the live chain with a chain file",
				ArgsUsage: "<file>",
				Action:    importAction,
			},
			{
				Name:      "export",
				Usage:     "write the live chain to a file",
				ArgsUsage: "<file>",
				Action:    exportAction,
			},
			{
				Name:   "anchor",
				Usage:  "print a short fingerprint of the chain tip",
				Action: anchorAction,
			},
			{
				Name:      "verify",
				Usage:     "check a chain file offline",
				ArgsUsage: "<file>",
				Flags:     []cli.Flag{keyFileFlag()},
				Action:    verifyAction,
			},
			{
				Name:      "repair",
				Usage:     "renumber, relink, sanitize and re-sign a damaged chain file offline",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					keyFileFlag(),
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "report what would change without writing",
					},
				},
				Action: repairAction,
			},
			{
				Name:   "explore",
				Usage:  "browse the ledger in a terminal UI",
				Action: exploreAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func keyFileFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "key-file",
		Usage:   "file holding the signing secret",
		Sources: cli.EnvVars(config.EnvSigningKeyFile),
	}
}
