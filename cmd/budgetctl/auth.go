package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"economic/client"
	"economic/session"

	"golang.org/x/term"
)

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func (a *app) password(given string) (string, error) {
	if given != "" {
		return given, nil
	}
	fmt.Fprint(a.stdout, "Password: ")
	pw, err := readPassword(a.stdin)
	fmt.Fprintln(a.stdout)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if strings.TrimSpace(pw) == "" {
		return "", errors.New("password cannot be empty")
	}
	return pw, nil
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := a.flags("login")
	email := fs.String("email", "", "account email")
	pw := fs.String("password", "", "password (prompted when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("missing required flag: -email")
	}
	password, err := a.password(*pw)
	if err != nil {
		return err
	}

	token, err := client.NewAuthService(a.api).Login(ctx, *email, password)
	if err != nil {
		if client.IsUnauthorized(err) {
			return errors.New("invalid email or password")
		}
		return describe(err, "")
	}
	if err := a.newSession(0).Login(token); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	fmt.Fprintf(a.stdout, "Logged in as %s\n", *email)
	return nil
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := a.flags("register")
	email := fs.String("email", "", "account email")
	name := fs.String("name", "", "full name")
	pw := fs.String("password", "", "password (prompted when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("missing required flag: -email")
	}
	password, err := a.password(*pw)
	if err != nil {
		return err
	}
	if len(password) < 6 {
		return errors.New("password must be at least 6 characters")
	}

	token, err := client.NewAuthService(a.api).Register(ctx, *email, password, *name)
	if err != nil {
		return describe(err, "")
	}
	if err := a.newSession(0).Login(token); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	fmt.Fprintf(a.stdout, "Account created, logged in as %s\n", *email)
	return nil
}

func (a *app) logout() error {
	a.newSession(0).Logout(session.ReasonNone)
	fmt.Fprintln(a.stdout, "Logged out")
	return nil
}

func (a *app) profile(ctx context.Context) error {
	_, api, err := a.authed(0)
	if err != nil {
		return err
	}
	u, err := client.NewUserService(api).Profile(ctx)
	if err != nil {
		return describe(err, "")
	}
	fmt.Fprintf(a.stdout, "%s <%s>\n", u.FullName(), u.Email)
	fmt.Fprintf(a.stdout, "roles: %s\n", strings.Join(u.Roles, ", "))
	for _, f := range []struct {
		label string
		value *string
	}{{"phone", u.Phone}, {"address", u.Address}, {"birth date", u.BirthDate}} {
		if f.value != nil && *f.value != "" {
			fmt.Fprintf(a.stdout, "%s: %s\n", f.label, *f.value)
		}
	}
	return nil
}
