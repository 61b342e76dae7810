// Command bracketctl runs organizer operations against the bracket database without the web UI.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/AdamBeresnev/esports-bracket/internal/config"
	"github.com/AdamBeresnev/esports-bracket/internal/db"
	"github.com/AdamBeresnev/esports-bracket/internal/service"
	"github.com/AdamBeresnev/esports-bracket/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const usage = `usage: bracketctl <command> [args]

commands:
  generate <tournament-id>         rebuild the bracket from confirmed registrations
  lock <tournament-id>             stop regeneration
  unlock <tournament-id>           allow regeneration again
  show <tournament-id>             print the bracket
  verify <match-id>                verify a reported result and advance the winner
  set-winner <match-id> <a|b>      organizer override
  dispute <match-id> <true|false>  raise or clear the dispute flag
`

func main() {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	if flag.NArg() < 2 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}
	database, err := db.InitDB(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	if err := db.RunMigrations(database.DB, cfg.DBDriver, cfg.MigrationsURL()); err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}

	cli := newCLI(database, os.Stdout)

	if err := cli.run(context.Background(), flag.Arg(0), flag.Args()[1:]); err != nil {
		log.Fatal(err)
	}
}

type cli struct {
	tournaments *service.TournamentService
	brackets    *service.BracketService
	matches     *service.MatchService
	out         io.Writer
}

func newCLI(database *sqlx.DB, out io.Writer) *cli {
	tournamentStore := store.NewTournamentStore(database)
	userStore := store.NewUserStore(database)
	return &cli{
		tournaments: service.NewTournamentService(database, tournamentStore, userStore),
		brackets:    service.NewBracketService(database, tournamentStore),
		matches:     service.NewMatchService(database, tournamentStore),
		out:         out,
	}
}

func (c *cli) run(ctx context.Context, cmd string, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%s needs an id", cmd)
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid id %q: %w", args[0], err)
	}

	switch cmd {
	case "generate":
		res, err := c.brackets.GenerateBracket(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%d participants, capacity %d, %d rounds, Bo%d, %d byes\n",
			res.Participants, res.Capacity, res.Rounds, res.BestOf, res.Byes)
	case "lock", "unlock":
		b, err := c.brackets.SetLocked(ctx, id, cmd == "lock")
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "bracket %s locked=%t\n", b.ID, b.IsLocked)
	case "show":
		return c.show(ctx, id)
	case "verify":
		m, err := c.matches.VerifyAndApply(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "match %s verified, winner %s\n", m.ID, m.WinnerSlot())
	case "set-winner":
		if len(args) < 2 {
			return fmt.Errorf("set-winner needs a side")
		}
		m, err := c.matches.AdminSetWinner(ctx, id, args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "match %s winner %s\n", m.ID, m.WinnerSlot())
	case "dispute":
		if len(args) < 2 {
			return fmt.Errorf("dispute needs true or false")
		}
		disputed, err := strconv.ParseBool(args[1])
		if err != nil {
			return err
		}
		m, err := c.matches.SetDisputed(ctx, id, disputed)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "match %s state %s\n", m.ID, m.State)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func (c *cli) show(ctx context.Context, id uuid.UUID) error {
	data, err := c.tournaments.GetTournamentData(ctx, id)
	if err != nil {
		return err
	}
	labels := data.Labels()
	name := func(side interface {
		IsEmpty() bool
		ID() uuid.UUID
	}) string {
		if side.IsEmpty() {
			return "-"
		}
		return labels[side.ID()]
	}

	fmt.Fprintf(c.out, "%s (%d participants)\n", data.Tournament.Name, len(data.Participants))
	for _, m := range data.Matches {
		fmt.Fprintf(c.out, "R%d M%d  %-24s vs %-24s  %s", m.RoundNumber, m.Position, name(m.SideA()), name(m.SideB()), m.State)
		if w := m.WinnerSlot(); w != "" {
			fmt.Fprintf(c.out, "  winner=%s", w)
		}
		if m.IsBye {
			fmt.Fprint(c.out, "  (bye)")
		} else if m.ReportedBy != nil {
			fmt.Fprintf(c.out, "  reported by %s", data.Reporters[*m.ReportedBy])
		}
		fmt.Fprintln(c.out)
	}
	return nil
}
