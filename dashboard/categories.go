package dashboard

import (
	"net/http"
	"strings"

	"economic/client"

	"github.com/gin-gonic/gin"
)

type categoryModal struct {
	Mode     string
	Category client.Category
	Name     string
	Type     string
	Error    string
}

type categoriesView struct {
	page
	Type       string
	Categories []client.Category
	Modal      *categoryModal
}

func categoryTab(c *gin.Context) string {
	if t := c.Query("type"); t == client.TypeIncome {
		return t
	}
	return client.TypeExpense
}

func (s *Server) renderCategories(c *gin.Context, status int, modal *categoryModal) {
	acc := currentAccount(c)
	view := categoriesView{page: basePage(c, "Categories"), Type: categoryTab(c), Modal: modal}

	cats, err := acc.categories.ListByType(c.Request.Context(), view.Type)
	if err != nil {
		s.log.WithError(err).Warn("load categories")
		view.Error = client.FriendlyMessage(err, "Could not load categories.")
	}
	view.Categories = cats

	if modal != nil && modal.Mode != "create" && modal.Category.ID == "" {
		id := c.Param("id")
		if id == "" {
			id = c.Query("id")
		}
		modal.Category = s.findCategory(c, acc, cats, id)
		if modal.Mode == "edit" && modal.Name == "" {
			modal.Name, modal.Type = modal.Category.Name, modal.Category.Type
		}
	}
	c.HTML(status, "category.html", view)
}

func (s *Server) findCategory(c *gin.Context, acc *account, cats []client.Category, id string) client.Category {
	for _, cat := range cats {
		if cat.ID == id {
			return cat
		}
	}
	if id == "" {
		return client.Category{}
	}
	cat, err := acc.categories.Get(c.Request.Context(), id)
	if err != nil {
		return client.Category{ID: id}
	}
	return *cat
}

func (s *Server) categories(c *gin.Context) {
	var modal *categoryModal
	switch mode := c.Query("modal"); mode {
	case "create":
		modal = &categoryModal{Mode: mode, Type: categoryTab(c)}
	case "edit", "delete":
		if c.Query("id") != "" {
			modal = &categoryModal{Mode: mode}
		}
	}
	s.renderCategories(c, http.StatusOK, modal)
}

func categoriesURL(typ, notice string) string {
	return withNotice("/dashboard/category?type="+typ, notice)
}

func (s *Server) createCategory(c *gin.Context) {
	acc := currentAccount(c)
	name := strings.TrimSpace(c.PostForm("name"))
	typ := c.PostForm("type")
	modal := &categoryModal{Mode: "create", Name: name, Type: typ}

	if name == "" {
		modal.Error = "Name is required."
	} else if typ != client.TypeIncome && typ != client.TypeExpense {
		modal.Error = "Type must be income or expense."
	}
	if modal.Error != "" {
		s.renderCategories(c, http.StatusBadRequest, modal)
		return
	}

	if _, err := acc.categories.Create(c.Request.Context(), client.CategoryCreate{Name: name, Type: typ}); err != nil {
		modal.Error = "Could not create category: " + client.FriendlyMessage(err, "")
		s.renderCategories(c, http.StatusBadRequest, modal)
		return
	}
	c.Redirect(http.StatusSeeOther, categoriesURL(typ, "Category created."))
}

func (s *Server) updateCategory(c *gin.Context) {
	acc := currentAccount(c)
	id := c.Param("id")
	modal := &categoryModal{Mode: "edit", Name: c.PostForm("name"), Type: c.PostForm("type")}

	orig, err := acc.categories.Get(c.Request.Context(), id)
	if err != nil {
		modal.Category = client.Category{ID: id}
		modal.Error = "Could not save changes: " + client.FriendlyMessage(err, "")
		s.renderCategories(c, http.StatusBadRequest, modal)
		return
	}
	modal.Category = *orig

	upd := client.DiffCategory(*orig, modal.Name, modal.Type)
	if upd.Empty() {
		c.Redirect(http.StatusSeeOther, categoriesURL(orig.Type, "Nothing to save."))
		return
	}
	updated, err := acc.categories.Update(c.Request.Context(), id, upd)
	if err != nil {
		modal.Error = "Could not save changes: " + client.FriendlyMessage(err, "")
		s.renderCategories(c, http.StatusBadRequest, modal)
		return
	}
	c.Redirect(http.StatusSeeOther, categoriesURL(updated.Type, "Category saved."))
}

// deleteCategory does not check whether records still use the category.
func (s *Server) deleteCategory(c *gin.Context) {
	acc := currentAccount(c)
	if err := acc.categories.Delete(c.Request.Context(), c.Param("id")); err != nil {
		modal := &categoryModal{Mode: "delete", Error: "Could not delete: " + client.FriendlyMessage(err, "")}
		s.renderCategories(c, http.StatusBadRequest, modal)
		return
	}
	c.Redirect(http.StatusSeeOther, categoriesURL(categoryTab(c), "Category deleted."))
}
