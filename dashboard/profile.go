package dashboard

import (
	"net/http"
	"time"

	"economic/client"

	"github.com/gin-gonic/gin"
)

type profileView struct {
	page
	Profile   *client.User
	Age       int
	Editing   bool
	Form      client.ProfileForm
	FormError string
}

// age in whole years at now, or 0 when birthDate is not set.
func age(birthDate *string, now time.Time) int {
	if birthDate == nil {
		return 0
	}
	b, err := time.Parse(client.DateLayout, *birthDate)
	if err != nil {
		return 0
	}
	years := now.Year() - b.Year()
	if now.Month() < b.Month() || (now.Month() == b.Month() && now.Day() < b.Day()) {
		years--
	}
	return max(years, 0)
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func profileForm(u client.User) client.ProfileForm {
	return client.ProfileForm{
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Phone:      deref(u.Phone),
		Address:    deref(u.Address),
		BirthDate:  deref(u.BirthDate),
		PictureURL: deref(u.PictureURL),
	}
}

func (s *Server) renderProfile(c *gin.Context, status int, view profileView) {
	acc := currentAccount(c)
	view.page = basePage(c, "Profile")
	user, err := acc.users.Profile(c.Request.Context())
	if err != nil {
		s.log.WithError(err).Warn("load profile")
		view.Error = client.FriendlyMessage(err, "Could not load profile.")
	} else {
		view.Profile = user
		view.User = user
		view.Age = age(user.BirthDate, s.now())
		if view.Editing && view.Form == (client.ProfileForm{}) {
			view.Form = profileForm(*user)
		}
	}
	c.HTML(status, "profile.html", view)
}

func (s *Server) profile(c *gin.Context) {
	s.renderProfile(c, http.StatusOK, profileView{Editing: c.Query("edit") == "1"})
}

func (s *Server) updateProfile(c *gin.Context) {
	acc := currentAccount(c)
	form := client.ProfileForm{
		FirstName:  c.PostForm("firstName"),
		LastName:   c.PostForm("lastName"),
		Phone:      c.PostForm("phone"),
		Address:    c.PostForm("address"),
		BirthDate:  c.PostForm("birthDate"),
		PictureURL: c.PostForm("pictureUrl"),
	}

	orig, err := acc.users.Profile(c.Request.Context())
	if err != nil {
		s.renderProfile(c, http.StatusBadRequest, profileView{Editing: true, Form: form, FormError: client.FriendlyMessage(err, "Could not load profile.")})
		return
	}
	upd, err := client.DiffProfile(*orig, form)
	if err != nil {
		s.renderProfile(c, http.StatusBadRequest, profileView{Editing: true, Form: form, FormError: err.Error()})
		return
	}
	if upd.Empty() {
		c.Redirect(http.StatusSeeOther, withNotice("/dashboard/profile", "Nothing to save."))
		return
	}
	if _, err := acc.users.UpdateProfile(c.Request.Context(), upd); err != nil {
		msg := "Could not update profile: " + client.FriendlyMessage(err, "")
		s.renderProfile(c, http.StatusBadRequest, profileView{Editing: true, Form: form, FormError: msg})
		return
	}
	c.Redirect(http.StatusSeeOther, withNotice("/dashboard/profile", "Profile updated."))
}
