package dashboard

import (
	"net/http"

	"economic/client"

	"github.com/gin-gonic/gin"
)

// MsgNotAdmin is shown to signed in users without the admin role.
const MsgNotAdmin = "Access denied: you do not have permission to view this page."

type roleModal struct {
	User  client.User
	Role  string
	Error string
}

type adminView struct {
	page
	Allowed bool
	Users   []client.User
	Roles   []string
	Modal   *roleModal
}

// primaryRole is what the role editor preselects.
func primaryRole(u client.User) string {
	if u.IsAdmin() {
		return client.RoleAdmin
	}
	return client.RoleUser
}

// renderAdmin checks the caller's own profile before listing users.
func (s *Server) renderAdmin(c *gin.Context, status int, modal *roleModal) {
	acc := currentAccount(c)
	view := adminView{page: basePage(c, "Admin"), Roles: []string{client.RoleUser, client.RoleAdmin}}

	me, err := acc.users.Profile(c.Request.Context())
	if err != nil {
		view.Error = client.FriendlyMessage(err, "Could not load your profile.")
		c.HTML(status, "admin.html", view)
		return
	}
	view.User = me
	if !me.IsAdmin() {
		view.Error = MsgNotAdmin
		c.HTML(http.StatusForbidden, "admin.html", view)
		return
	}
	view.Allowed = true

	users, err := acc.users.List(c.Request.Context())
	if err != nil {
		s.log.WithError(err).Warn("list users")
		view.Error = client.FriendlyMessage(err, "Could not load users.")
	}
	view.Users = users

	if modal != nil && modal.User.Email == "" {
		for _, u := range users {
			if u.ID == modal.User.ID {
				modal.User = u
				if modal.Role == "" {
					modal.Role = primaryRole(u)
				}
			}
		}
	}
	view.Modal = modal
	c.HTML(status, "admin.html", view)
}

func (s *Server) admin(c *gin.Context) {
	var modal *roleModal
	if id := c.Query("edit"); id != "" {
		modal = &roleModal{User: client.User{ID: id}}
	}
	s.renderAdmin(c, http.StatusOK, modal)
}

// updateRoles replaces the user's roles with the single selected role.
func (s *Server) updateRoles(c *gin.Context) {
	acc := currentAccount(c)
	id := c.Param("id")
	role := c.PostForm("role")
	modal := &roleModal{User: client.User{ID: id}, Role: role}

	if role != client.RoleUser && role != client.RoleAdmin {
		modal.Error = "Choose a valid role."
		s.renderAdmin(c, http.StatusBadRequest, modal)
		return
	}
	updated, err := acc.users.UpdateRoles(c.Request.Context(), id, []string{role})
	if err != nil {
		modal.Error = "Could not update roles: " + client.FriendlyMessage(err, "")
		s.renderAdmin(c, http.StatusBadRequest, modal)
		return
	}
	s.log.WithField("user", updated.ID).WithField("roles", updated.Roles).Info("roles updated")
	c.Redirect(http.StatusSeeOther, withNotice("/dashboard/admin", "Roles updated for "+updated.Email+"."))
}
