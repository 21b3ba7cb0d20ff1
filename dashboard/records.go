package dashboard

import (
	"context"
	"net/http"

	"economic/client"
	"economic/summary"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// recordPages serves /dashboard/budget (income) or /dashboard/spending
// (expenses).
type recordPages struct {
	s       *Server
	kind    string
	base    string
	heading string
	noun    string
}

func (s *Server) recordPages(kind string) *recordPages {
	if kind == client.TypeIncome {
		return &recordPages{s: s, kind: kind, base: "/dashboard/budget", heading: "Income overview", noun: "income"}
	}
	return &recordPages{s: s, kind: kind, base: "/dashboard/spending", heading: "Spending overview", noun: "expense"}
}

type recordModal struct {
	Mode   string
	Record client.Record
	Form   client.RecordForm
	Error  string
}

type recordsView struct {
	page
	Kind       string
	Base       string
	Heading    string
	Noun       string
	Period     summary.Period
	Cards      summary.Cards
	Table      summary.Page[client.Record]
	Pie        []summary.PiePoint
	Bar        []summary.BarPoint
	PieTotal   float64
	BarMax     float64
	Categories []client.Category
	Modal      *recordModal
}

// load fetches the records and the categories of this page in parallel.
func (rp *recordPages) load(ctx context.Context, acc *account) ([]client.Record, []client.Category, error) {
	var records []client.Record
	var cats []client.Category
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = acc.records(rp.kind).ListMine(ctx)
		return err
	})
	g.Go(func() error {
		all, err := acc.categories.List(ctx)
		for _, cat := range all {
			if cat.Type == rp.kind {
				cats = append(cats, cat)
			}
		}
		return err
	})
	err := g.Wait()
	return records, cats, err
}

func (rp *recordPages) render(c *gin.Context, status int, modal *recordModal) {
	acc := currentAccount(c)
	view := recordsView{
		page:    basePage(c, rp.heading),
		Kind:    rp.kind,
		Base:    rp.base,
		Heading: rp.heading,
		Noun:    rp.noun,
		Period:  periodFrom(c, rp.s.now(), false),
		Modal:   modal,
	}

	records, cats, err := rp.load(c.Request.Context(), acc)
	if err != nil {
		rp.s.log.WithError(err).WithField("kind", rp.kind).Warn("load records")
		view.Error = client.FriendlyMessage(err, "Could not load "+rp.noun+" data.")
	}
	view.Categories = cats

	p := view.Period
	view.Cards = summary.CardsOf(records, p)

	month := p
	month.Monthly = true
	view.Table = summary.Paginate(summary.Filter(records, month), pageNumber(c), rp.s.cfg.PageSize)

	totals := summary.ByCategory(summary.Filter(records, p), rp.kind)
	view.Pie = summary.PieSeries(totals)
	view.Bar = summary.BarSeries(totals)
	for _, b := range view.Bar {
		view.PieTotal += b.TotalAmount
		view.BarMax = max(view.BarMax, b.TotalAmount)
	}

	if modal != nil && modal.Mode != "create" && modal.Record.ID == "" {
		modal.Record = rp.find(c, acc, records, c.Param("id"))
		if modal.Mode == "edit" {
			modal.Form = client.FormOf(modal.Record)
		}
	}
	c.HTML(status, "records.html", view)
}

// find returns the record with id from the loaded list, asking the backend
// when it is not there.
func (rp *recordPages) find(c *gin.Context, acc *account, records []client.Record, id string) client.Record {
	for _, r := range records {
		if r.ID == id {
			return r
		}
	}
	r, err := acc.records(rp.kind).Get(c.Request.Context(), id)
	if err != nil {
		return client.Record{ID: id}
	}
	return *r
}

func (rp *recordPages) show(c *gin.Context) {
	var modal *recordModal
	switch mode := c.Query("modal"); mode {
	case "create":
		modal = &recordModal{Mode: mode, Form: client.RecordForm{Date: rp.s.now().Format(client.DateLayout)}}
	case "edit", "delete":
		id := c.Query("id")
		if id != "" {
			c.Params = append(c.Params, gin.Param{Key: "id", Value: id})
			modal = &recordModal{Mode: mode}
		}
	}
	rp.render(c, http.StatusOK, modal)
}

func formOf(c *gin.Context) client.RecordForm {
	return client.RecordForm{
		Amount:      c.PostForm("amount"),
		CategoryID:  c.PostForm("categoryId"),
		Description: c.PostForm("description"),
		Date:        c.PostForm("date"),
	}
}

func (rp *recordPages) backToList(c *gin.Context, notice string) {
	p := periodFrom(c, rp.s.now(), false)
	c.Redirect(http.StatusSeeOther, withNotice(periodURL(rp.base, p), notice))
}

func (rp *recordPages) create(c *gin.Context) {
	acc := currentAccount(c)
	form := formOf(c)
	in, err := form.Create()
	if err != nil {
		rp.render(c, http.StatusBadRequest, &recordModal{Mode: "create", Form: form, Error: err.Error()})
		return
	}
	if _, err := acc.records(rp.kind).Create(c.Request.Context(), in); err != nil {
		msg := "Could not create " + rp.noun + ": " + client.FriendlyMessage(err, "")
		rp.render(c, http.StatusBadRequest, &recordModal{Mode: "create", Form: form, Error: msg})
		return
	}
	rp.backToList(c, "Record added.")
}

func (rp *recordPages) update(c *gin.Context) {
	acc := currentAccount(c)
	id := c.Param("id")
	form := formOf(c)

	orig, err := acc.records(rp.kind).Get(c.Request.Context(), id)
	if err != nil {
		msg := "Could not save changes: " + client.FriendlyMessage(err, "")
		rp.render(c, http.StatusBadRequest, &recordModal{Mode: "edit", Record: client.Record{ID: id}, Form: form, Error: msg})
		return
	}
	upd, err := client.DiffRecord(*orig, form)
	if err != nil {
		rp.render(c, http.StatusBadRequest, &recordModal{Mode: "edit", Record: *orig, Form: form, Error: err.Error()})
		return
	}
	if upd.Empty() {
		rp.backToList(c, "Nothing to save.")
		return
	}
	if _, err := acc.records(rp.kind).Update(c.Request.Context(), id, upd); err != nil {
		msg := "Could not save changes: " + client.FriendlyMessage(err, "")
		rp.render(c, http.StatusBadRequest, &recordModal{Mode: "edit", Record: *orig, Form: form, Error: msg})
		return
	}
	rp.backToList(c, "Changes saved.")
}

func (rp *recordPages) remove(c *gin.Context) {
	acc := currentAccount(c)
	id := c.Param("id")
	if err := acc.records(rp.kind).Delete(c.Request.Context(), id); err != nil {
		msg := "Could not delete: " + client.FriendlyMessage(err, "")
		rp.render(c, http.StatusBadRequest, &recordModal{Mode: "delete", Error: msg})
		return
	}
	rp.backToList(c, "Record deleted.")
}
