package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"economic/client"
	"economic/session"
)

func (a *app) users(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: budgetctl users list|set-role")
	}
	_, api, err := a.authed(0)
	if err != nil {
		return err
	}
	svc := client.NewUserService(api)

	switch args[0] {
	case "list":
		list, err := svc.List(ctx)
		if err != nil {
			return describe(err, "")
		}
		w := table(a.stdout)
		fmt.Fprintln(w, "ID\tEMAIL\tNAME\tROLES")
		for _, u := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.ID, u.Email, u.FullName(), strings.Join(u.Roles, ","))
		}
		return w.Flush()
	case "set-role":
		if len(args) != 3 {
			return errors.New("usage: budgetctl users set-role <id> user|admin")
		}
		role := args[2]
		if role != client.RoleUser && role != client.RoleAdmin {
			return fmt.Errorf("role must be user or admin, got %q", role)
		}
		u, err := svc.UpdateRoles(ctx, args[1], []string{role})
		if err != nil {
			return fmt.Errorf("could not update roles: %s", client.FriendlyMessage(err, ""))
		}
		fmt.Fprintf(a.stdout, "%s now has roles: %s\n", u.Email, strings.Join(u.Roles, ", "))
		return nil
	default:
		return fmt.Errorf("unknown users command %q", args[0])
	}
}

const chatFailed = "Sorry, an error occurred. Please try again."

// chat runs a read-eval loop against the assistant. The session is polled
// so a token that expires mid-conversation ends the loop.
func (a *app) chat(ctx context.Context, args []string) error {
	fs := a.flags("chat")
	use := fs.String("context", "", "send your income or expense records as context")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *use != "" && *use != client.TypeIncome && *use != client.TypeExpense {
		return fmt.Errorf("context must be income or expense, got %q", *use)
	}

	sess, api, err := a.authed(a.poll)
	if err != nil {
		return err
	}
	defer sess.Close()
	chat := client.NewChatService(api)

	var data client.ContextData
	if *use != "" {
		records, err := recordService(api, *use).ListMine(ctx)
		if err != nil {
			return describe(err, "")
		}
		if *use == client.TypeIncome {
			data.Income = records
		} else {
			data.Expenses = records
		}
		fmt.Fprintf(a.stdout, "Using %d %s records as context.\n", len(records), *use)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(a.stdin)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	fmt.Fprintln(a.stdout, "Hi! Ask me anything about your finances. Empty line or EOF quits.")
	for {
		fmt.Fprint(a.stdout, "> ")
		var line string
		select {
		case reason := <-a.loggedOut:
			return fmt.Errorf("session ended: %s", reason)
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(a.stdout)
				return nil
			}
			line = strings.TrimSpace(l)
		}
		if line == "" {
			return nil
		}

		var reply string
		if data.Income == nil && data.Expenses == nil {
			reply, err = chat.Completion(ctx, line)
		} else {
			reply, err = chat.ContextualCompletion(ctx, line, data)
		}
		if err != nil {
			if client.IsUnauthorized(err) {
				sess.Logout(session.ReasonExpiredInterval)
				return errors.New(client.MsgLoginAgain)
			}
			fmt.Fprintln(a.stdout, client.FriendlyMessage(err, chatFailed))
			continue
		}
		fmt.Fprintln(a.stdout, reply)
	}
}
