package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/kimolalekan/vale/config"
	"github.com/kimolalekan/vale/internal/adapter/storage/ledgerdb"
	"github.com/kimolalekan/vale/internal/core/domain"
	"github.com/kimolalekan/vale/internal/service"
	"github.com/kimolalekan/vale/pkg/logger"
)

// services groups everything a command needs after setup.
type services struct {
	accounts *service.AccountServiceImpl
	txs      *service.TransactionServiceImpl
	close    func()
}

// setup loads config, opens the ledger and wires the services for one
// command invocation.
func setup(c *cli.Context) (*services, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	log = logger.WithInvocation(log, c.Command.Name)

	store, err := ledgerdb.Open(cfg.Ledger.Path, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger at %s: %w", cfg.Ledger.Path, err)
	}

	keys := service.NewEd25519KeyService()
	cipher := service.NewChaCha20CipherService()
	accounts := service.NewAccountService(store, keys, cipher, log)
	txs := service.NewTransactionService(store, accounts, cipher, cfg.Fees, log)

	return &services{
		accounts: accounts,
		txs:      txs,
		close:    func() { _ = store.Close() },
	}, nil
}

// balanceJSON flattens the tagged balance union for output.
type balanceJSON struct {
	Kind    string  `json:"kind"`
	Text    string  `json:"text,omitempty"`
	Decimal float64 `json:"decimal,omitempty"`
}

type accountJSON struct {
	Address   string      `json:"address"`
	Balance   balanceJSON `json:"balance"`
	Timestamp uint64      `json:"timestamp"`
}

func accountOutput(a *domain.Account) accountJSON {
	out := accountJSON{Address: a.Address, Timestamp: a.Timestamp}
	switch a.Balance.Kind {
	case domain.BalanceDecimal:
		out.Balance = balanceJSON{Kind: "decimal", Decimal: a.Balance.Decimal}
	default:
		out.Balance = balanceJSON{Kind: "text", Text: a.Balance.Text}
	}
	return out
}

type payloadJSON struct {
	Sender    string  `json:"sender,omitempty"`
	Receiver  string  `json:"receiver,omitempty"`
	Amount    float64 `json:"amount,omitempty"`
	Encrypted bool    `json:"encrypted"`
}

func payloadOutput(p domain.TransactionPayload) payloadJSON {
	if p.IsPlain() {
		return payloadJSON{
			Sender:   p.Plain.Sender,
			Receiver: p.Plain.Receiver,
			Amount:   p.Plain.Amount,
		}
	}
	return payloadJSON{Encrypted: true}
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func main() {
	app := &cli.App{
		Name:  "vale",
		Usage: "encrypted account and transaction ledger",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to config file (env vars and defaults apply without it)",
			},
		},
		CommandNotFound: func(c *cli.Context, command string) {
			fmt.Fprintf(os.Stderr, "unknown command %q\n\n", command)
			cli.ShowAppHelp(c)
			os.Exit(2)
		},
		Commands: []*cli.Command{
			{
				Name:  "create-account",
				Usage: "create an account and print its keys once",
				Action: func(c *cli.Context) error {
					svcs, err := setup(c)
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					defer svcs.close()

					created, err := svcs.accounts.Create(context.Background())
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					return printJSON(struct {
						Address    string  `json:"address"`
						Balance    float64 `json:"balance"`
						PublicKey  string  `json:"public_key"`
						PrivateKey string  `json:"private_key"`
						Timestamp  uint64  `json:"timestamp"`
					}{created.Address, created.Balance, created.PublicKey, created.PrivateKey, created.Timestamp})
				},
			},
			{
				Name:      "get-balance",
				Usage:     "decrypt the balance of the account owned by the private key",
				ArgsUsage: "ADDRESS PRIVATE_KEY",
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return cli.Exit("usage: vale get-balance ADDRESS PRIVATE_KEY", 2)
					}
					svcs, err := setup(c)
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					defer svcs.close()

					balance, err := svcs.accounts.GetBalance(context.Background(), c.Args().Get(0), c.Args().Get(1))
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					return printJSON(struct {
						Address string  `json:"address"`
						Balance float64 `json:"balance"`
					}{balance.Address, balance.Balance})
				},
			},
			{
				Name:      "get-account",
				Usage:     "fetch and decrypt the account owned by the private key",
				ArgsUsage: "PRIVATE_KEY",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.Exit("usage: vale get-account PRIVATE_KEY", 2)
					}
					svcs, err := setup(c)
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					defer svcs.close()

					account, err := svcs.accounts.GetDetails(context.Background(), c.Args().First())
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					return printJSON(accountOutput(account))
				},
			},
			{
				Name:      "list-accounts",
				Usage:     "page through accounts with balances redacted",
				ArgsUsage: " ",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "page", Value: 1, Usage: "1-based page number"},
					&cli.IntFlag{Name: "limit", Value: 20, Usage: "accounts per page"},
				},
				Action: func(c *cli.Context) error {
					svcs, err := setup(c)
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					defer svcs.close()

					accounts, err := svcs.accounts.List(context.Background(), c.Int("page"), c.Int("limit"))
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					out := make([]accountJSON, 0, len(accounts))
					for i := range accounts {
						out = append(out, accountOutput(&accounts[i]))
					}
					return printJSON(out)
				},
			},
			{
				Name:  "total-accounts",
				Usage: "print the number of accounts ever created",
				Action: func(c *cli.Context) error {
					svcs, err := setup(c)
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					defer svcs.close()

					total, err := svcs.accounts.Total(context.Background())
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					return printJSON(struct {
						Total int64 `json:"total"`
					}{total})
				},
			},
			{
				Name:      "send",
				Usage:     "create and persist an encrypted transaction",
				ArgsUsage: "SENDER_ADDRESS RECEIVER_ADDRESS AMOUNT",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "narration", Usage: "free-form note stored in the clear"},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() != 3 {
						return cli.Exit("usage: vale send SENDER_ADDRESS RECEIVER_ADDRESS AMOUNT", 2)
					}
					amount, err := strconv.ParseFloat(c.Args().Get(2), 64)
					if err != nil {
						return cli.Exit(fmt.Sprintf("invalid amount %q", c.Args().Get(2)), 2)
					}
					svcs, err := setup(c)
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					defer svcs.close()

					ctx := context.Background()
					tx, err := svcs.txs.Initialize(c.Args().Get(0), c.Args().Get(1), amount, c.String("narration"))
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					processed, err := svcs.txs.Process(ctx, tx)
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					return printJSON(struct {
						ID        string  `json:"id"`
						Fee       float64 `json:"fee"`
						Size      float64 `json:"size"`
						Timestamp uint64  `json:"timestamp"`
						Status    string  `json:"status"`
						TxKey     string  `json:"tx_key"`
					}{processed.ID, processed.Fee, processed.Size, processed.Timestamp, string(processed.Status), processed.TxKey})
				},
			},
			{
				Name:      "get-transaction",
				Usage:     "fetch a transaction and open the views the key can decrypt",
				ArgsUsage: "ID KEY",
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return cli.Exit("usage: vale get-transaction ID KEY", 2)
					}
					svcs, err := setup(c)
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					defer svcs.close()

					view, err := svcs.txs.Get(context.Background(), c.Args().Get(0), c.Args().Get(1))
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					return printJSON(struct {
						ID           string      `json:"id"`
						SenderData   payloadJSON `json:"sender_data"`
						ReceiverData payloadJSON `json:"receiver_data"`
						Fee          float64     `json:"fee"`
						Size         float64     `json:"size"`
						Timestamp    uint64      `json:"timestamp"`
						Narration    string      `json:"narration,omitempty"`
						Status       string      `json:"status"`
					}{
						view.ID,
						payloadOutput(view.SenderData),
						payloadOutput(view.ReceiverData),
						view.Fee, view.Size, view.Timestamp, view.Narration, string(view.Status),
					})
				},
			},
			{
				Name:      "verify-address",
				Usage:     "check the checksum of an address",
				ArgsUsage: "ADDRESS",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.Exit("usage: vale verify-address ADDRESS", 2)
					}
					ok, err := service.NewEd25519KeyService().VerifyAddress(c.Args().First())
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					return printJSON(struct {
						Address string `json:"address"`
						Valid   bool   `json:"valid"`
					}{c.Args().First(), ok})
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
