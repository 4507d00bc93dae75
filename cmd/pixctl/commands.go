package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/urfave/cli/v2"

	jwttoken "pixkeys/internal/jwt_token"
	"pixkeys/internal/pixkey"
	"pixkeys/internal/pixkey/events"
	"pixkeys/internal/pixkey/models"
	"pixkeys/internal/platform/database"
	"pixkeys/internal/platform/logger"
	id "pixkeys/pkg/domain"
	dErrors "pixkeys/pkg/domain-errors"
)

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "create the key store schema",
		Action: func(c *cli.Context) error {
			driver := c.String(flagDatabaseDriver.Name)
			if driver == pixkey.DriverMemory {
				return errors.New("the memory store has no schema")
			}
			db, err := database.Open(c.Context, driver, c.String(flagDatabaseURL.Name))
			if err != nil {
				return err
			}
			defer db.Close()
			if err := database.Migrate(c.Context, db, driver); err != nil {
				return err
			}
			_, err = fmt.Fprintf(c.App.Writer, "schema ready on %s\n", driver)
			return err
		},
	}
}

var accountFlags = []cli.Flag{
	&cli.StringFlag{Name: "account-type", Usage: "checking or savings"},
	&cli.IntFlag{Name: "branch"},
	&cli.IntFlag{Name: "account"},
	&cli.StringFlag{Name: "first-name", Usage: "owner first name"},
	&cli.StringFlag{Name: "last-name", Usage: "owner last name"},
}

func createCommand() *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "register a new key",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "type", Required: true, Usage: "cpf, email or phone"},
			&cli.StringFlag{Name: "value", Required: true},
		}, accountFlags...),
		Action: func(c *cli.Context) error {
			accountType, err := models.ParseAccountType(c.String("account-type"))
			if err != nil {
				return err
			}
			req := models.CreateRequest{
				KeyType:     c.String("type"),
				KeyValue:    c.String("value"),
				AccountType: accountType,
				Account:     models.Account{Branch: c.Int("branch"), Number: c.Int("account")},
				Owner:       models.Owner{FirstName: c.String("first-name"), LastName: c.String("last-name")},
			}
			return withRegistry(c, func(ctx context.Context, r *pixkey.Registry) error {
				key, err := r.Engine.Create(ctx, req)
				if err != nil {
					return err
				}
				return printJSON(c, key)
			})
		},
	}
}

func keyIDArg(c *cli.Context) (id.PixKeyID, error) {
	if c.NArg() != 1 {
		return id.PixKeyID{}, fmt.Errorf("expected exactly one key id, got %d arguments", c.NArg())
	}
	return id.ParsePixKeyID(c.Args().First())
}

func getCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "show one key",
		ArgsUsage: "<key-id>",
		Action: func(c *cli.Context) error {
			keyID, err := keyIDArg(c)
			if err != nil {
				return err
			}
			return withRegistry(c, func(ctx context.Context, r *pixkey.Registry) error {
				key, err := r.Resolver.ByID(ctx, keyID, models.Filter{})
				if err != nil {
					return err
				}
				return printJSON(c, key)
			})
		},
	}
}

func amendCommand() *cli.Command {
	return &cli.Command{
		Name:      "amend",
		Usage:     "change the account or owner of a key",
		ArgsUsage: "<key-id>",
		Flags:     accountFlags,
		Action: func(c *cli.Context) error {
			keyID, err := keyIDArg(c)
			if err != nil {
				return err
			}
			change, err := amendmentFromFlags(c)
			if err != nil {
				return err
			}
			return withRegistry(c, func(ctx context.Context, r *pixkey.Registry) error {
				key, err := r.Engine.Amend(ctx, keyID, change)
				if err != nil {
					return err
				}
				return printJSON(c, key)
			})
		},
	}
}

func amendmentFromFlags(c *cli.Context) (models.Amendment, error) {
	var a models.Amendment
	if c.IsSet("account-type") {
		t, err := models.ParseAccountType(c.String("account-type"))
		if err != nil {
			return a, err
		}
		a.AccountType = &t
	}
	if c.IsSet("branch") {
		a.Branch = models.Ptr(c.Int("branch"))
	}
	if c.IsSet("account") {
		a.AccountNumber = models.Ptr(c.Int("account"))
	}
	if c.IsSet("first-name") {
		a.OwnerFirstName = models.Ptr(strings.TrimSpace(c.String("first-name")))
	}
	if c.IsSet("last-name") {
		a.OwnerLastName = models.Ptr(strings.TrimSpace(c.String("last-name")))
	}
	if a.IsEmpty() {
		return a, errors.New("nothing to amend: set at least one of --account-type, --branch, --account, --first-name, --last-name")
	}
	return a, nil
}

func deactivateCommand() *cli.Command {
	return &cli.Command{
		Name:      "deactivate",
		Usage:     "deactivate a key; this cannot be undone",
		ArgsUsage: "<key-id>",
		Action: func(c *cli.Context) error {
			keyID, err := keyIDArg(c)
			if err != nil {
				return err
			}
			return withRegistry(c, func(ctx context.Context, r *pixkey.Registry) error {
				key, err := r.Engine.Deactivate(ctx, keyID)
				if err != nil {
					return err
				}
				return printJSON(c, key)
			})
		},
	}
}

// purgeCommand physically removes a key record. It bypasses the lifecycle
// and frees the key value, so it requires --yes.
func purgeCommand() *cli.Command {
	return &cli.Command{
		Name:      "purge",
		Usage:     "permanently delete a key record",
		ArgsUsage: "<key-id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Usage: "confirm the deletion"},
		},
		Action: func(c *cli.Context) error {
			keyID, err := keyIDArg(c)
			if err != nil {
				return err
			}
			if !c.Bool("yes") {
				return errors.New("purge is irreversible; pass --yes to confirm")
			}
			return withRegistry(c, func(ctx context.Context, r *pixkey.Registry) error {
				if err := r.Store.DeleteByID(ctx, keyID); err != nil {
					return err
				}
				_, err := fmt.Fprintf(c.App.Writer, "purged %s\n", keyID)
				return err
			})
		},
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "list keys matching every given filter",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type"},
			&cli.StringFlag{Name: "value"},
			&cli.IntFlag{Name: "branch"},
			&cli.IntFlag{Name: "account"},
			&cli.TimestampFlag{Name: "created-after", Layout: time.RFC3339, Timezone: time.UTC},
			&cli.TimestampFlag{Name: "deactivated-after", Layout: time.RFC3339, Timezone: time.UTC},
			&cli.TimestampFlag{Name: "created-on", Layout: time.DateOnly, Timezone: time.UTC},
			&cli.TimestampFlag{Name: "deactivated-on", Layout: time.DateOnly, Timezone: time.UTC},
			&cli.StringFlag{Name: "owner", Usage: "case-insensitive substring of the owner's first name"},
		},
		Action: func(c *cli.Context) error {
			return withRegistry(c, func(ctx context.Context, r *pixkey.Registry) error {
				keys, err := runSearch(ctx, c, r)
				if err != nil {
					return err
				}
				return printJSON(c, keys)
			})
		},
	}
}

// runSearch picks the narrowest resolver lookup for the flags given.
func runSearch(ctx context.Context, c *cli.Context, r *pixkey.Registry) ([]*models.PixKey, error) {
	set := func(names ...string) int {
		n := 0
		for _, name := range names {
			if c.IsSet(name) {
				n++
			}
		}
		return n
	}
	total := set("type", "value", "branch", "account", "created-after", "deactivated-after", "created-on", "deactivated-on", "owner")

	switch {
	case c.IsSet("owner"):
		if total > 1 {
			return nil, errors.New("--owner cannot be combined with other filters")
		}
		return r.Resolver.ByOwnerName(ctx, c.String("owner"))
	case c.IsSet("created-on") && total == 1:
		return r.Resolver.ByCreatedOn(ctx, *c.Timestamp("created-on"))
	case c.IsSet("deactivated-on") && total == 1:
		return r.Resolver.ByDeactivatedOn(ctx, *c.Timestamp("deactivated-on"))
	case c.IsSet("type") && total == 1:
		t, err := models.ParseKeyType(c.String("type"))
		if err != nil {
			return nil, err
		}
		return r.Resolver.ByType(ctx, t)
	case set("branch", "account") == 2 && total == 2:
		return r.Resolver.ByAccount(ctx, models.Account{Branch: c.Int("branch"), Number: c.Int("account")})
	}

	var f models.Filter
	if c.IsSet("type") {
		t, err := models.ParseKeyType(c.String("type"))
		if err != nil {
			return nil, err
		}
		f.KeyType = &t
	}
	if c.IsSet("value") {
		f.KeyValue = models.Ptr(c.String("value"))
	}
	if c.IsSet("branch") {
		f.Branch = models.Ptr(c.Int("branch"))
	}
	if c.IsSet("account") {
		f.Account = models.Ptr(c.Int("account"))
	}
	if c.IsSet("created-after") {
		f.CreatedAfter = c.Timestamp("created-after")
	}
	if c.IsSet("deactivated-after") {
		f.DeactivatedAfter = c.Timestamp("deactivated-after")
	}
	if c.IsSet("created-on") {
		start, end := models.DayBounds(*c.Timestamp("created-on"))
		f.CreatedAfter, f.CreatedBefore = &start, &end
	}
	if c.IsSet("deactivated-on") {
		start, end := models.DayBounds(*c.Timestamp("deactivated-on"))
		f.DeactivatedAfter, f.DeactivatedBefore = &start, &end
	}
	return r.Resolver.ByFilters(ctx, f)
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "issue an operator bearer token for the mutating HTTP routes",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "subject", Required: true, Usage: "operator identity recorded as the event actor"},
			&cli.DurationFlag{Name: "ttl", Value: time.Hour},
		},
		Action: func(c *cli.Context) error {
			key := c.String(flagJWTSigningKey.Name)
			if key == "" {
				return dErrors.New(dErrors.CodeBadRequest, "--jwt-signing-key (JWT_SIGNING_KEY) is required")
			}
			token, err := jwttoken.NewJWTService(key, c.String(flagJWTIssuer.Name)).IssueToken(c.String("subject"), c.Duration("ttl"))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.App.Writer, token)
			return err
		},
	}
}

func eventsCommand() *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "inspect the lifecycle event stream",
		Subcommands: []*cli.Command{
			{
				Name:  "tail",
				Usage: "print lifecycle events as they arrive until interrupted",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "from-start", Usage: "replay the topic from the earliest offset"},
				},
				Action: tailEvents,
			},
		},
	}
}

func tailEvents(c *cli.Context) error {
	brokers := c.StringSlice(flagKafkaBrokers.Name)
	if len(brokers) == 0 {
		return errors.New("--kafka-brokers (KAFKA_BROKERS) is required")
	}
	offset := kgo.NewOffset().AtEnd()
	if c.Bool("from-start") {
		offset = kgo.NewOffset().AtStart()
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumeTopics(c.String(flagKafkaTopic.Name)),
		kgo.ConsumeResetOffset(offset),
	)
	if err != nil {
		return fmt.Errorf("kafka client: %w", err)
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	log := logger.NewTo(c.App.ErrWriter, c.String(flagLogLevel.Name), "text")
	return events.Consume(ctx, client, log, func(e events.Event) error {
		return printJSON(c, e)
	})
}
