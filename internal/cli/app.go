package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/gabrielslopes/labelcheck/internal/flagx"
	"github.com/gabrielslopes/labelcheck/internal/logging"
	"github.com/gabrielslopes/labelcheck/internal/server"
	"github.com/gabrielslopes/labelcheck/internal/server/config"
	"github.com/gabrielslopes/labelcheck/internal/server/models"
	"github.com/gabrielslopes/labelcheck/internal/server/records"
	"github.com/gabrielslopes/labelcheck/internal/server/repositories/repomanager"
	"github.com/gabrielslopes/labelcheck/internal/server/users"
)

const dateLayout = "2006-01-02"

// App is the admin CLI. It opens the configured storage backend directly,
// so it works with or without a running server.
type App struct {
	config *config.Config
	in     *bufio.Reader
	out    io.Writer
}

func NewApp(cfg *config.Config) *App {
	return &App{
		config: cfg,
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
}

func (a *App) usage() error {
	fmt.Fprintln(a.out, "usage: labelcheck-cli <command>")
	fmt.Fprintln(a.out, "commands:")
	fmt.Fprintln(a.out, "  create-admin   interactively create an administrator account")
	fmt.Fprintln(a.out, "  export         export the scan log to a CSV file")
	return fmt.Errorf("unknown command")
}

func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.usage()
	}
	switch args[0] {
	case "create-admin":
		return a.CreateAdmin(ctx)
	case "export":
		return a.Export(ctx, args[1:])
	default:
		return a.usage()
	}
}

// openServices opens the backend and migrates it, mirroring server startup.
func (a *App) openServices(ctx context.Context) (*users.Service, *records.Service, func() error, error) {
	db, err := server.OpenDB(a.config)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.NewManager(a.config.StorageBackend)
	if err != nil {
		db.Close()
		return nil, nil, nil, err
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("migration error: %w", err)
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	us := users.NewService(rm.Users(db), a.config, logger)
	rs := records.NewService(db, rm, a.config, logger)
	return us, rs, db.Close, nil
}

// CreateAdmin interactively enrolls an administrator. This is how the very
// first account gets created on a fresh installation.
func (a *App) CreateAdmin(ctx context.Context) error {
	us, _, closeDB, err := a.openServices(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	login, err := GetSimpleText(a.in, "Admin login", a.out)
	if err != nil {
		return err
	}
	name, err := GetSimpleText(a.in, "Display name (empty to reuse login)", a.out)
	if err != nil {
		return err
	}
	password, err := GetConfirmedPassword(a.out)
	if err != nil {
		return err
	}

	user, err := us.Create(ctx, login, name, models.RoleAdmin, string(password), true)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Administrator %q created (id %s)\n", user.Login, user.ID)
	return nil
}

// Export writes the scan log for a date range to a BOM-prefixed CSV file.
func (a *App) Export(ctx context.Context, args []string) error {
	// shared command lines may also carry server config flags; parse only ours
	args = flagx.FilterArgs(args, []string{"-from", "-to", "-screen", "-divergent", "-o"})

	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(a.out)

	today := time.Now().Format(dateLayout)
	fromArg := fs.String("from", today, "range start, YYYY-MM-DD")
	toArg := fs.String("to", today, "range end, YYYY-MM-DD")
	screenArg := fs.String("screen", "", "filter by screen (LEITURA or VARIOS)")
	divergentOnly := fs.Bool("divergent", false, "divergent entries only")
	outPath := fs.String("o", "", "output file (default: derived from range)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	from, err := time.ParseInLocation(dateLayout, *fromArg, time.Local)
	if err != nil {
		return fmt.Errorf("invalid -from date: %w", err)
	}
	to, err := time.ParseInLocation(dateLayout, *toArg, time.Local)
	if err != nil {
		return fmt.Errorf("invalid -to date: %w", err)
	}

	screen := models.Screen(*screenArg)
	if screen != "" && !screen.Valid() {
		return fmt.Errorf("invalid -screen value %q", *screenArg)
	}

	_, rs, closeDB, err := a.openServices(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	entries, err := rs.Query(ctx, from, to, screen, *divergentOnly)
	if err != nil {
		return err
	}

	path := *outPath
	if path == "" {
		path = records.ExportFileName(from, to, screen, *divergentOnly)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := records.WriteCSV(f, entries); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Wrote %d entries to %s\n", len(entries), path)
	return nil
}
