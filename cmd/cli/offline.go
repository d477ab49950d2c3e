package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/shu8h0-null/shopledger/core/blockchain"
	"github.com/shu8h0-null/shopledger/core/config"
	"github.com/urfave/cli/v3"
)

func offlineSigner(cmd *cli.Command) (*blockchain.Signer, error) {
	key, err := config.LoadSigningKey(os.Getenv(config.EnvSigningKey), cmd.String("key-file"))
	if err != nil {
		return nil, err
	}
	return blockchain.NewSigner(key)
}

func verifyAction(ctx context.Context, cmd *cli.Command) error {
	if err := requireArgs(cmd, 1); err != nil {
		return err
	}
	signer, err := offlineSigner(cmd)
	if err != nil {
		return err
	}

	path := cmd.Args().First()
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	blocks, err := blockchain.ParseChain(data)
	if err == nil {
		err = blockchain.ValidateChain(blocks, signer)
	}
	if err != nil {
		return cli.Exit(fmt.Sprintf("%s: %v", path, err), 3)
	}

	pterm.Success.Printfln("%s: %d block(s), chain intact", path, len(blocks))
	return nil
}

func repairAction(ctx context.Context, cmd *cli.Command) error {
	if err := requireArgs(cmd, 1); err != nil {
		return err
	}
	signer, err := offlineSigner(cmd)
	if err != nil {
		return err
	}

	path := cmd.Args().First()
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	blocks, err := blockchain.ParseLenientChain(data)
	if err != nil {
		return cli.Exit(fmt.Sprintf("%s cannot be repaired: %v", path, err), 3)
	}
	// Files in the old shop format need rewriting even when nothing else changes.
	_, strictErr := blockchain.ParseChain(data)
	legacy := strictErr != nil

	fixed, report := blockchain.Repair(blocks, signer)
	if !report.Changed() && !legacy {
		pterm.Info.Printfln("%s needs no repair", path)
		return nil
	}
	if legacy {
		pterm.Warning.Printfln("%s: converting transactions from the legacy format", path)
	}
	pterm.Warning.Printfln("%s: %s", path, report)
	if cmd.Bool("dry-run") {
		return nil
	}

	backup := fmt.Sprintf("%s.bak-%s", path, time.Now().Format("20060102_150405"))
	if err := blockchain.WriteFileAtomic(backup, data); err != nil {
		return fmt.Errorf("backup before repair failed, nothing written: %w", err)
	}
	pterm.Info.Printfln("Original saved as %s", backup)

	out, err := blockchain.MarshalChain(fixed)
	if err != nil {
		return err
	}
	if err := blockchain.WriteFileAtomic(path, out); err != nil {
		return err
	}
	pterm.Success.Printfln("%s rewritten with %d block(s)", path, len(fixed))
	return nil
}
