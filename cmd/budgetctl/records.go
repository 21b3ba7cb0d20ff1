package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"economic/client"
	"economic/summary"

	"golang.org/x/sync/errgroup"
)

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// period parses -year, -month and -monthly, defaulting to the current year.
// extra registers command specific flags on the same set.
func (a *app) period(args []string, name string, extra func(*flag.FlagSet)) (summary.Period, []string, error) {
	now := a.now()
	fs := a.flags(name)
	year := fs.Int("year", now.Year(), "year")
	month := fs.Int("month", 0, "month 1-12 (implies -monthly)")
	monthly := fs.Bool("monthly", false, "restrict to the current month")
	if extra != nil {
		extra(fs)
	}
	if err := fs.Parse(args); err != nil {
		return summary.Period{}, nil, err
	}
	p := summary.Period{Year: *year, Month: now.Month(), Monthly: *monthly}
	if *month != 0 {
		if *month < 1 || *month > 12 {
			return summary.Period{}, nil, fmt.Errorf("month must be 1-12, got %d", *month)
		}
		p.Month, p.Monthly = time.Month(*month), true
	}
	return p, fs.Args(), nil
}

func (a *app) summary(ctx context.Context, args []string) error {
	p, _, err := a.period(args, "summary", nil)
	if err != nil {
		return err
	}
	_, api, err := a.authed(0)
	if err != nil {
		return err
	}

	var income, expense []client.Record
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		income, err = client.NewIncomeService(api).ListMine(gctx)
		return err
	})
	g.Go(func() (err error) {
		expense, err = client.NewExpenseService(api).ListMine(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return describe(err, "")
	}

	o := summary.OverviewOf(income, expense, p)
	fmt.Fprintf(a.stdout, "Overview %s\n\n", p.Label())
	w := table(a.stdout)
	fmt.Fprintf(w, "Income\t%s\n", money(o.Income))
	fmt.Fprintf(w, "Expenses\t%s\n", money(o.Expense))
	fmt.Fprintf(w, "Net result\t%s\n", money(o.Net))
	w.Flush()

	for _, part := range []struct {
		label   string
		records []client.Record
	}{{"Income", income}, {"Expenses", expense}} {
		cards := summary.CardsOf(part.records, p)
		fmt.Fprintf(a.stdout, "\n%s: year %s, month %s, monthly average %s\n",
			part.label, money(cards.YearTotal), money(cards.MonthTotal), money(cards.AverageMonthly))
		totals := summary.ByCategory(summary.Filter(part.records, p), "")
		if len(totals) == 0 {
			continue
		}
		w := table(a.stdout)
		fmt.Fprintln(w, "  CATEGORY\tCOUNT\tTOTAL")
		for _, t := range totals {
			fmt.Fprintf(w, "  %s\t%d\t%s\n", t.Name, t.Count, money(t.Total))
		}
		w.Flush()
	}
	return nil
}

func (a *app) records(ctx context.Context, kind string, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: budgetctl %s list|add|rm|export", kind)
	}
	switch args[0] {
	case "list":
		return a.listRecords(ctx, kind, args[1:])
	case "add":
		return a.addRecord(ctx, kind, args[1:])
	case "rm":
		return a.removeRecord(ctx, kind, args[1:])
	case "export":
		return a.exportRecords(ctx, kind, args[1:])
	default:
		return fmt.Errorf("unknown %s command %q", kind, args[0])
	}
}

func recordService(api *client.Client, kind string) *client.RecordService {
	if kind == client.TypeIncome {
		return client.NewIncomeService(api)
	}
	return client.NewExpenseService(api)
}

func (a *app) listRecords(ctx context.Context, kind string, args []string) error {
	var page *int
	var all *bool
	p, _, err := a.period(args, kind+" list", func(fs *flag.FlagSet) {
		page = fs.Int("page", 1, "page number")
		all = fs.Bool("all", false, "list every record regardless of period")
	})
	if err != nil {
		return err
	}
	_, api, err := a.authed(0)
	if err != nil {
		return err
	}
	records, err := recordService(api, kind).ListMine(ctx)
	if err != nil {
		return describe(err, "")
	}
	if !*all {
		records = summary.Filter(records, p)
	}

	pg := summary.Paginate(records, *page, a.pageSize)
	w := table(a.stdout)
	fmt.Fprintln(w, "ID\tDATE\tCATEGORY\tAMOUNT\tDESCRIPTION")
	for _, r := range pg.Items {
		date := r.Date
		if t, ok := r.Time(); ok {
			date = t.Format(client.DateLayout)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.ID, date, r.Category.Name, money(r.Value()), r.Description)
	}
	w.Flush()

	label := p.Label()
	if *all {
		label = "all"
	}
	fmt.Fprintf(a.stdout, "%s, page %d/%d, %d records, total %s\n",
		label, pg.Page, pg.Pages, pg.Total, money(summary.Total(records)))
	return nil
}

func (a *app) addRecord(ctx context.Context, kind string, args []string) error {
	fs := a.flags(kind + " add")
	amount := fs.String("amount", "", "amount")
	category := fs.String("category", "", "category id")
	description := fs.String("description", "", "description")
	date := fs.String("date", a.now().Format(client.DateLayout), "date (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	in, err := client.RecordForm{
		Amount:      *amount,
		CategoryID:  *category,
		Description: *description,
		Date:        *date,
	}.Create()
	if err != nil {
		return err
	}

	_, api, err := a.authed(0)
	if err != nil {
		return err
	}
	rec, err := recordService(api, kind).Create(ctx, in)
	if err != nil {
		return fmt.Errorf("could not create %s: %s", kind, client.FriendlyMessage(err, ""))
	}
	fmt.Fprintf(a.stdout, "Created %s %s\n", kind, rec.ID)
	return nil
}

func (a *app) removeRecord(ctx context.Context, kind string, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: budgetctl %s rm <id>", kind)
	}
	_, api, err := a.authed(0)
	if err != nil {
		return err
	}
	if err := recordService(api, kind).Delete(ctx, args[0]); err != nil {
		return fmt.Errorf("could not delete: %s", client.FriendlyMessage(err, ""))
	}
	fmt.Fprintf(a.stdout, "Deleted %s %s\n", kind, args[0])
	return nil
}

func (a *app) exportRecords(ctx context.Context, kind string, args []string) error {
	year := a.now().Year()
	fs := a.flags(kind + " export")
	start := fs.String("start", fmt.Sprintf("%d-01-01", year), "first day (YYYY-MM-DD)")
	end := fs.String("end", fmt.Sprintf("%d-12-31", year), "last day (YYYY-MM-DD)")
	out := fs.String("out", "", "write to file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	_, api, err := a.authed(0)
	if err != nil {
		return err
	}
	raw, err := recordService(api, kind).ExportCSV(ctx, *start, *end)
	if err != nil {
		return fmt.Errorf("could not export: %s", client.FriendlyMessage(err, ""))
	}
	if *out == "" {
		_, err = a.stdout.Write(raw)
		return err
	}
	if err := os.WriteFile(*out, raw, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Fprintf(a.stdout, "Wrote %s\n", *out)
	return nil
}

var errUsageCategory = errors.New("usage: budgetctl category list|add|rm")

func (a *app) category(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsageCategory
	}
	_, api, err := a.authed(0)
	if err != nil {
		return err
	}
	svc := client.NewCategoryService(api)

	switch args[0] {
	case "list":
		fs := a.flags("category list")
		typ := fs.String("type", "", "income or expense")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		var list []client.Category
		if *typ == "" {
			list, err = svc.List(ctx)
		} else {
			list, err = svc.ListByType(ctx, *typ)
		}
		if err != nil {
			return describe(err, "")
		}
		w := table(a.stdout)
		fmt.Fprintln(w, "ID\tTYPE\tNAME")
		for _, c := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID, c.Type, c.Name)
		}
		return w.Flush()
	case "add":
		fs := a.flags("category add")
		name := fs.String("name", "", "category name")
		typ := fs.String("type", client.TypeExpense, "income or expense")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *name == "" {
			return errors.New("missing required flag: -name")
		}
		if *typ != client.TypeIncome && *typ != client.TypeExpense {
			return fmt.Errorf("type must be income or expense, got %q", *typ)
		}
		c, err := svc.Create(ctx, client.CategoryCreate{Name: *name, Type: *typ})
		if err != nil {
			return fmt.Errorf("could not create category: %s", client.FriendlyMessage(err, ""))
		}
		fmt.Fprintf(a.stdout, "Created category %s\n", c.ID)
		return nil
	case "rm":
		if len(args) != 2 {
			return errors.New("usage: budgetctl category rm <id>")
		}
		if err := svc.Delete(ctx, args[1]); err != nil {
			return fmt.Errorf("could not delete: %s", client.FriendlyMessage(err, ""))
		}
		fmt.Fprintf(a.stdout, "Deleted category %s\n", args[1])
		return nil
	default:
		return errUsageCategory
	}
}
