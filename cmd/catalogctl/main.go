// catalogctl обращается к gRPC сервису каталога Filmorate из командной строки.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kingpin/v2"

	grpcClient "filmorate/internal/grpc"
	"filmorate/internal/logging"
)

type commands struct {
	app *kingpin.Application

	addr    *string
	timeout *time.Duration
	verbose *bool

	filmExists   *kingpin.CmdClause
	filmExistsID *int64
	userExists   *kingpin.CmdClause
	userExistsID *int64
	film         *kingpin.CmdClause
	filmID       *int64
	popular      *kingpin.CmdClause
	popularCount *int
}

func newCommands() *commands {
	c := &commands{app: kingpin.New("catalogctl", "Filmorate catalog gRPC client.")}
	c.addr = c.app.Flag("addr", "gRPC server address").Default("localhost:9090").Envar("FILMORATE_GRPC_ADDR").String()
	c.timeout = c.app.Flag("timeout", "overall request timeout").Default("5s").Duration()
	c.verbose = c.app.Flag("verbose", "log client activity to stderr").Short('v').Bool()

	c.filmExists = c.app.Command("film-exists", "Check whether a film exists.")
	c.filmExistsID = c.filmExists.Arg("id", "film id").Required().Int64()

	c.userExists = c.app.Command("user-exists", "Check whether a user exists.")
	c.userExistsID = c.userExists.Arg("id", "user id").Required().Int64()

	c.film = c.app.Command("film", "Print a film as JSON.")
	c.filmID = c.film.Arg("id", "film id").Required().Int64()

	c.popular = c.app.Command("popular", "Print the most liked films as JSON.")
	c.popularCount = c.popular.Flag("count", "number of films").Default("10").Int()
	return c
}

// run выполняет выбранную команду и печатает результат в out.
func (c *commands) run(ctx context.Context, args []string, out io.Writer) error {
	cmd, err := c.app.Parse(args)
	if err != nil {
		return err
	}

	logLevel := "error"
	if *c.verbose {
		logLevel = "debug"
	}
	logger, err := logging.New(os.Stderr, logLevel, "text")
	if err != nil {
		return err
	}

	client, err := grpcClient.NewCatalogClient(*c.addr, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, *c.timeout)
	defer cancel()

	var result any
	switch cmd {
	case c.filmExists.FullCommand():
		result, err = client.FilmExists(ctx, *c.filmExistsID)
	case c.userExists.FullCommand():
		result, err = client.UserExists(ctx, *c.userExistsID)
	case c.film.FullCommand():
		result, err = client.GetFilm(ctx, *c.filmID)
	case c.popular.FullCommand():
		result, err = client.PopularFilms(ctx, *c.popularCount)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func main() {
	if err := newCommands().run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		slog.Error("catalogctl failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
