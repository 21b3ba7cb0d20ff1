// Command budgetctl is a terminal client of the economic backend.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"economic/client"
	"economic/config"
	"economic/logging"
	"economic/session"

	"github.com/joho/godotenv"
)

const usage = `Usage: budgetctl [flags] <command> [args]

Commands:
  login -email <email> [-password <password>]
  register -email <email> [-name <name>] [-password <password>]
  logout
  profile
  summary [-year <y>] [-month <m>] [-monthly]
  income|expense list [-year <y>] [-month <m>] [-page <n>] [-all]
  income|expense add -amount <a> -category <id> [-description <d>] [-date YYYY-MM-DD]
  income|expense rm <id>
  income|expense export [-start YYYY-MM-DD] [-end YYYY-MM-DD] [-out <file>]
  category list [-type income|expense]
  category add -name <name> -type income|expense
  category rm <id>
  users list
  users set-role <id> user|admin
  chat [-context income|expense]
`

var errNotLoggedIn = errors.New("not logged in, run: budgetctl login -email <email>")

func main() {
	_ = godotenv.Load()
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app is the state shared by the commands of one invocation.
type app struct {
	stdin     io.Reader
	stdout    io.Writer
	stderr    io.Writer
	api       *client.Client
	store     session.Store
	poll      time.Duration
	pageSize  int
	now       func() time.Time
	loggedOut chan session.Reason
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("budgetctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	configFile := fs.String("config", "", "external config file (optional)")
	apiURL := fs.String("api", "", "REST backend base URL (default from config)")
	tokenFile := fs.String("token-file", "", "where the session token is kept (default ~/.economic/token)")
	verbose := fs.Bool("verbose", false, "log requests")

	if err := fs.Parse(args); err != nil {
		return err
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	logging.InitWithOutput(stderr, level, "text")

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		return err
	}
	if *apiURL != "" {
		cfg.Dashboard.APIBaseURL = *apiURL
	}
	path := *tokenFile
	if path == "" {
		if path, err = session.DefaultTokenPath(); err != nil {
			return err
		}
	}

	a := &app{
		stdin:     stdin,
		stdout:    stdout,
		stderr:    stderr,
		api:       client.New(cfg.Dashboard.APIBaseURL, nil),
		store:     session.FileStore{Path: path},
		poll:      cfg.Dashboard.PollInterval,
		pageSize:  cfg.Dashboard.PageSize,
		now:       time.Now,
		loggedOut: make(chan session.Reason, 1),
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return errors.New("missing command")
	}
	return a.dispatch(context.Background(), rest[0], rest[1:])
}

func (a *app) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return a.login(ctx, args)
	case "register":
		return a.register(ctx, args)
	case "logout":
		return a.logout()
	case "profile":
		return a.profile(ctx)
	case "summary":
		return a.summary(ctx, args)
	case client.TypeIncome, client.TypeExpense:
		return a.records(ctx, cmd, args)
	case "category":
		return a.category(ctx, args)
	case "users":
		return a.users(ctx, args)
	case "chat":
		return a.chat(ctx, args)
	default:
		fmt.Fprint(a.stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// Navigate reports forced logouts; there is no page to move to.
func (a *app) Navigate(path string) {
	msg, ok := strings.CutPrefix(path, "/login?message=")
	if !ok {
		return
	}
	fmt.Fprintf(a.stderr, "Session ended (%s). Log in again with: budgetctl login\n", msg)
	select {
	case a.loggedOut <- session.Reason(msg):
	default:
	}
}

func (a *app) newSession(poll time.Duration) *session.Session {
	return session.New(a.store, a, session.WithPollInterval(poll), session.WithClock(a.now))
}

// authed opens the stored session. Commands that need a user call this first.
func (a *app) authed(poll time.Duration) (*session.Session, *client.Client, error) {
	sess := a.newSession(poll)
	if err := sess.Init(); err != nil {
		return nil, nil, err
	}
	if sess.State() != session.Authenticated {
		return nil, nil, errNotLoggedIn
	}
	return sess, a.api.WithTokens(sess), nil
}

// describe turns a backend error into the message shown to the user.
func describe(err error, fallback string) error {
	if err == nil {
		return nil
	}
	return errors.New(client.FriendlyMessage(err, fallback))
}
