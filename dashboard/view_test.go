package dashboard

import (
	"testing"
	"time"

	"economic/summary"

	"github.com/stretchr/testify/assert"
)

func TestMoney(t *testing.T) {
	assert.Equal(t, "0.00 kr.", money(0))
	assert.Equal(t, "75.00 kr.", money(75))
	assert.Equal(t, "1,234.50 kr.", money(1234.5))
	assert.Equal(t, "1,000,000.00 kr.", money(1e6))
	assert.Equal(t, "-42.10 kr.", money(-42.1))
}

func TestAge(t *testing.T) {
	now := time.Date(2024, time.February, 20, 0, 0, 0, 0, time.UTC)
	b := "2000-02-21"
	assert.Equal(t, 23, age(&b, now))
	b = "2000-02-20"
	assert.Equal(t, 24, age(&b, now))
	bad := "soon"
	assert.Equal(t, 0, age(&bad, now))
	assert.Equal(t, 0, age(nil, now))
}

func TestPeriodURL(t *testing.T) {
	p := summary.Period{Year: 2024, Month: time.March, Monthly: true}
	assert.Equal(t, "/dashboard/budget?month=3&view=monthly&year=2024", periodURL("/dashboard/budget", p))
	assert.Equal(t, "/x?modal=create&month=3&view=monthly&year=2024", periodURL("/x", p, "modal", "create"))
}

func TestWithNotice(t *testing.T) {
	assert.Equal(t, "/a?notice=Saved.", withNotice("/a", "Saved."))
	assert.Equal(t, "/a?b=1&notice=Record+added.", withNotice("/a?b=1", "Record added."))
}
