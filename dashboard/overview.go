package dashboard

import (
	"net/http"

	"economic/client"
	"economic/summary"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

type monthBar struct {
	Label   string
	Income  float64
	Expense float64
}

type overviewPage struct {
	page
	Base     string
	Period   summary.Period
	Overview summary.Overview
	Months   []monthBar
	Max      float64
}

// fetchBoth loads the caller's income and expenses in parallel. Whatever was
// loaded is returned alongside the first error.
func fetchBoth(c *gin.Context, acc *account) (income, expense []client.Record, err error) {
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		income, err = acc.income.ListMine(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		expense, err = acc.expense.ListMine(ctx)
		return err
	})
	err = g.Wait()
	return income, expense, err
}

func (s *Server) overview(c *gin.Context) {
	acc := currentAccount(c)
	data := overviewPage{
		page:   basePage(c, "Dashboard"),
		Base:   "/dashboard",
		Period: periodFrom(c, s.now(), false),
	}

	income, expense, err := fetchBoth(c, acc)
	if err != nil {
		s.log.WithError(err).Warn("load dashboard data")
		data.Error = client.FriendlyMessage(err, "Could not load dashboard data.")
	}

	data.Overview = summary.OverviewOf(income, expense, data.Period)
	in := summary.Monthly(income, data.Period.Year)
	out := summary.Monthly(expense, data.Period.Year)
	for i := range in {
		m := monthBar{Label: monthNames[i], Income: in[i], Expense: out[i]}
		data.Max = max(data.Max, m.Income, m.Expense)
		data.Months = append(data.Months, m)
	}
	c.HTML(http.StatusOK, "overview.html", data)
}

var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
