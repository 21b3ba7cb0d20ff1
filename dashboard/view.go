package dashboard

import (
	"encoding/json"
	"fmt"
	"html/template"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"economic/client"
	"economic/summary"

	"github.com/gin-gonic/gin"
)

// page is embedded in every template's data.
type page struct {
	Title  string
	Path   string
	Error  string
	Notice string
	User   *client.User
}

func basePage(c *gin.Context, title string) page {
	return page{Title: title, Path: c.Request.URL.Path, Notice: c.Query("notice")}
}

var templateFuncs = template.FuncMap{
	"money":     money,
	"json": func(v interface{}) template.JS {
		b, err := json.Marshal(v)
		if err != nil {
			return template.JS("null")
		}
		return template.JS(b)
	},
	"pct": func(part, whole float64) string {
		if whole <= 0 {
			return "0"
		}
		return strconv.FormatFloat(math.Round(part/whole*100), 'f', 0, 64)
	},
	"hasRole":   func(u client.User, role string) bool { return u.HasRole(role) },
	"datePart":  datePart,
	"join":      strings.Join,
	"add":       func(a, b int) int { return a + b },
	"periodURL": periodURL,
	"hasPrefix": strings.HasPrefix,
	"months":    func() []string { return monthNames[:] },
	"monthNum":  func(m time.Month) int { return int(m) },
	"toggle": func(p summary.Period) summary.Period {
		p.Monthly = !p.Monthly
		return p
	},
	"chatGreeting": func() string { return ChatGreeting },
	"chatFailed":   func() string { return ChatFailed },
}

// money formats an amount as "1,234.50 kr.".
func money(v float64) string {
	neg := v < 0
	s := strconv.FormatFloat(math.Abs(v), 'f', 2, 64)
	intPart, frac := s[:len(s)-3], s[len(s)-2:]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + "." + frac + " kr."
	if neg {
		return "-" + out
	}
	return out
}

func datePart(r client.Record) string {
	if t, ok := r.Time(); ok {
		return t.Format(client.DateLayout)
	}
	return r.Date
}

// periodFrom reads ?year=&month=&view= with the current month as default.
func periodFrom(c *gin.Context, now time.Time, monthlyDefault bool) summary.Period {
	p := summary.CurrentPeriod(now, monthlyDefault)
	if y, err := strconv.Atoi(c.Query("year")); err == nil && y > 0 && y < 10000 {
		p.Year = y
	}
	if m, err := strconv.Atoi(c.Query("month")); err == nil && m >= 1 && m <= 12 {
		p.Month = time.Month(m)
	}
	switch c.Query("view") {
	case "monthly":
		p.Monthly = true
	case "yearly":
		p.Monthly = false
	}
	return p
}

// periodURL links base with the period and extra query pairs.
func periodURL(base string, p summary.Period, extra ...string) string {
	q := url.Values{}
	q.Set("year", strconv.Itoa(p.Year))
	q.Set("month", strconv.Itoa(int(p.Month)))
	if p.Monthly {
		q.Set("view", "monthly")
	} else {
		q.Set("view", "yearly")
	}
	for i := 0; i+1 < len(extra); i += 2 {
		q.Set(extra[i], extra[i+1])
	}
	return base + "?" + q.Encode()
}

func pageNumber(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("page"))
	if err != nil {
		return 1
	}
	return n
}

func withNotice(path, notice string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%snotice=%s", path, sep, url.QueryEscape(notice))
}
