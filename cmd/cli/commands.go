package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/filecoin-project/go-jsonrpc"
	"github.com/pterm/pterm"
	"github.com/shu8h0-null/shopledger/core/blockchain"
	"github.com/shu8h0-null/shopledger/core/explorer"
	"github.com/shu8h0-null/shopledger/core/rpc"
	"github.com/shu8h0-null/shopledger/tui"
	"github.com/urfave/cli/v3"
)

func dial(ctx context.Context, cmd *cli.Command) (*rpc.Client, jsonrpc.ClientCloser, error) {
	client, closer, err := rpc.Dial(ctx, cmd.String("rpc"))
	if err != nil {
		return nil, nil, fmt.Errorf("cannot reach ledger daemon at %s: %w", cmd.String("rpc"), err)
	}
	return client, closer, nil
}

func requireArgs(cmd *cli.Command, n int) error {
	if cmd.Args().Len() != n {
		return cli.Exit(fmt.Sprintf("usage: ledgerctl %s %s", cmd.Name, cmd.ArgsUsage), 2)
	}
	return nil
}

func latestAction(ctx context.Context, cmd *cli.Command) error {
	client, closer, err := dial(ctx, cmd)
	if err != nil {
		return err
	}
	defer closer()

	block, err := client.Latest(ctx)
	if err != nil {
		return err
	}
	return printBlock(block)
}

func blocksAction(ctx context.Context, cmd *cli.Command) error {
	client, closer, err := dial(ctx, cmd)
	if err != nil {
		return err
	}
	defer closer()

	if cmd.Bool("raw") {
		blocks, err := client.RawBlocks(ctx)
		if err != nil {
			return err
		}
		spew.Dump(blocks)
		return nil
	}

	blocks, err := client.Blocks(ctx)
	if err != nil {
		return err
	}
	data := pterm.TableData{{"Index", "Sealed", "Tx", "Proof", "Hash", "Previous"}}
	for _, b := range blocks {
		data = append(data, []string{
			strconv.Itoa(b.Index),
			b.Time.Local().Format("2006-01-02 15:04:05"),
			strconv.Itoa(len(b.Transactions)),
			strconv.FormatInt(b.Proof, 10),
			abbrev(b.Hash),
			abbrev(b.PreviousHash),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func historyAction(ctx context.Context, cmd *cli.Command) error {
	if err := requireArgs(cmd, 1); err != nil {
		return err
	}
	client, closer, err := dial(ctx, cmd)
	if err != nil {
		return err
	}
	defer closer()

	sender := cmd.Args().First()
	rows, err := client.History(ctx, sender)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		pterm.Info.Printfln("No purchases by %s", sender)
		return nil
	}

	data := pterm.TableData{{"Block", "Time", "Items", "Total"}}
	var total int64
	for _, r := range rows {
		total += r.Total
		data = append(data, historyCells(r))
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		return err
	}
	pterm.Info.Printfln("%d purchase(s) by %s, %d total", len(rows), sender, total)
	return nil
}

func transactionsAction(ctx context.Context, cmd *cli.Command) error {
	client, closer, err := dial(ctx, cmd)
	if err != nil {
		return err
	}
	defer closer()

	report, err := client.Transactions(ctx)
	if err != nil {
		return err
	}
	data := pterm.TableData{{"Block", "Time", "Customer", "Items", "Total"}}
	for _, r := range report.Rows {
		cells := historyCells(r.HistoryRow)
		data = append(data, []string{cells[0], cells[1], r.Sender, cells[2], cells[3]})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		return err
	}
	pterm.Info.Printfln("%d transaction(s), revenue %d", report.Count, report.Revenue)
	return nil
}

func checkoutAction(ctx context.Context, cmd *cli.Command) error {
	client, closer, err := dial(ctx, cmd)
	if err != nil {
		return err
	}
	defer closer()

	req := rpc.CheckoutRequest{
		Sender: cmd.String("sender"),
		Text:   cmd.String("text"),
		Total:  cmd.String("total"),
	}
	if items := cmd.String("items"); items != "" {
		for _, it := range strings.Split(items, ",") {
			if it = strings.TrimSpace(it); it != "" {
				req.Items = append(req.Items, it)
			}
		}
	}

	block, err := client.Checkout(ctx, req)
	if err != nil {
		return err
	}
	pterm.Success.Printfln("Block #%d sealed", block.Index)
	return printBlock(block)
}

func backupsAction(ctx context.Context, cmd *cli.Command) error {
	client, closer, err := dial(ctx, cmd)
	if err != nil {
		return err
	}
	defer closer()

	backups, err := client.Backups(ctx)
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		pterm.Info.Println("No backups")
		return nil
	}

	data := pterm.TableData{{"Name", "Created", "Blocks", "Size", "Tip signature"}}
	for _, b := range backups {
		blocks := "?"
		if b.Blocks > 0 {
			blocks = strconv.Itoa(b.Blocks)
		}
		data = append(data, []string{
			b.Name,
			b.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			blocks,
			strconv.FormatInt(b.Size, 10),
			abbrev(b.TipSignature),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func downloadAction(ctx context.Context, cmd *cli.Command) error {
	if err := requireArgs(cmd, 2); err != nil {
		return err
	}
	client, closer, err := dial(ctx, cmd)
	if err != nil {
		return err
	}
	defer closer()

	name, dest := cmd.Args().Get(0), cmd.Args().Get(1)
	data, err := client.DownloadBackup(ctx, name)
	if err != nil {
		return err
	}
	if err := blockchain.WriteFileAtomic(dest, data); err != nil {
		return err
	}
	pterm.Success.Printfln("Backup %s saved to %s (%d bytes)", name, dest, len(data))
	return nil
}

func restoreAction(ctx context.Context, cmd *cli.Command) error {
	if err := requireArgs(cmd, 1); err != nil {
		return err
	}
	client, closer, err := dial(ctx, cmd)
	if err != nil {
		return err
	}
	defer closer()

	name := cmd.Args().First()
	if err := client.Restore(ctx, name); err != nil {
		return err
	}
	pterm.Success.Printfln("Chain restored from %s", name)
	return nil
}

func importAction(ctx context.Context, cmd *cli.Command) error {
	if err := requireArgs(cmd, 1); err != nil {
		return err
	}
	data, err := os.ReadFile(cmd.Args().First())
	if err != nil {
		return err
	}
	client, closer, err := dial(ctx, cmd)
	if err != nil {
		return err
	}
	defer closer()

	if err := client.Import(ctx, data); err != nil {
		return err
	}
	pterm.Success.Printfln("Chain imported from %s", cmd.Args().First())
	return nil
}

func exportAction(ctx context.Context, cmd *cli.Command) error {
	if err := requireArgs(cmd, 1); err != nil {
		return err
	}
	client, closer, err := dial(ctx, cmd)
	if err != nil {
		return err
	}
	defer closer()

	data, err := client.Export(ctx)
	if err != nil {
		return err
	}
	if err := blockchain.WriteFileAtomic(cmd.Args().First(), data); err != nil {
		return err
	}
	pterm.Success.Printfln("Chain written to %s", cmd.Args().First())
	return nil
}

func anchorAction(ctx context.Context, cmd *cli.Command) error {
	client, closer, err := dial(ctx, cmd)
	if err != nil {
		return err
	}
	defer closer()

	anchor, err := client.Anchor(ctx)
	if err != nil {
		return err
	}
	pterm.Println(anchor)
	return nil
}

func exploreAction(ctx context.Context, cmd *cli.Command) error {
	client, closer, err := dial(ctx, cmd)
	if err != nil {
		return err
	}
	defer closer()

	return tui.Run(ctx, tui.NewRPCBackend(client))
}

func printBlock(b explorer.BlockView) error {
	pterm.DefaultSection.Printfln("Block %d", b.Index)
	pterm.Printfln("Sealed     %s", b.Time.Local().Format("2006-01-02 15:04:05"))
	pterm.Printfln("Proof      %d", b.Proof)
	pterm.Printfln("Hash       %s", b.Hash)
	pterm.Printfln("Previous   %s", b.PreviousHash)
	pterm.Printfln("Signature  %s", b.Signature)

	if len(b.Transactions) == 0 {
		return nil
	}
	data := pterm.TableData{{"Customer", "Time", "Items", "Total"}}
	for _, tx := range b.Transactions {
		data = append(data, []string{
			tx.Sender,
			tx.Timestamp.Local().Format("2006-01-02 15:04:05"),
			strings.Join(tx.Items, ", "),
			strconv.FormatInt(tx.Total, 10),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func historyCells(r explorer.HistoryRow) []string {
	return []string{
		strconv.Itoa(r.BlockIndex),
		r.Timestamp.Local().Format("2006-01-02 15:04:05"),
		strings.Join(r.Items, ", "),
		strconv.FormatInt(r.Total, 10),
	}
}

func abbrev(s string) string {
	if len(s) <= 16 {
		return s
	}
	return s[:16] + "…"
}
