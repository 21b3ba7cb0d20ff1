package dashboard

import (
	"fmt"
	"net/http"
	"strings"

	"economic/client"

	"github.com/gin-gonic/gin"
)

// Chat messages shown by the assistant widget.
const (
	ChatGreeting  = "Hi! Ask me anything about your finances."
	ChatNoContext = "No page context (expenses or income) found. Asking a general question."
	ChatFailed    = "Sorry, an error occurred. Please try again."
)

type chatRequest struct {
	Message        string `json:"message" binding:"required"`
	UsePageContext bool   `json:"usePageContext"`
	Page           string `json:"page"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Messages []chatMessage `json:"messages"`
}

// pageContext loads the records belonging to the page the widget sits on.
func pageContext(c *gin.Context, acc *account, page string) (*client.ContextData, string, error) {
	switch strings.TrimRight(page, "/") {
	case "/dashboard/spending":
		records, err := acc.expense.ListMine(c.Request.Context())
		if err != nil {
			return nil, "", err
		}
		return &client.ContextData{Expenses: records}, fmt.Sprintf("Using %d expense records as context.", len(records)), nil
	case "/dashboard/budget":
		records, err := acc.income.ListMine(c.Request.Context())
		if err != nil {
			return nil, "", err
		}
		return &client.ContextData{Income: records}, fmt.Sprintf("Using %d income records as context.", len(records)), nil
	}
	return nil, ChatNoContext, nil
}

func (s *Server) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "message is required"})
		return
	}
	acc := currentAccount(c)
	message := strings.TrimSpace(req.Message)
	var resp chatResponse

	fail := func(err error) {
		s.log.WithError(err).Warn("chat")
		resp.Messages = append(resp.Messages, chatMessage{Role: "system", Content: client.FriendlyMessage(err, ChatFailed)})
		c.JSON(statusOf(err), resp)
	}

	var data *client.ContextData
	if req.UsePageContext {
		d, note, err := pageContext(c, acc, req.Page)
		if err != nil {
			fail(err)
			return
		}
		data = d
		resp.Messages = append(resp.Messages, chatMessage{Role: "system", Content: note})
	}

	var reply string
	var err error
	if data != nil {
		reply, err = acc.chat.ContextualCompletion(c.Request.Context(), message, *data)
	} else {
		reply, err = acc.chat.Completion(c.Request.Context(), message)
	}
	if err != nil {
		fail(err)
		return
	}
	resp.Messages = append(resp.Messages, chatMessage{Role: "assistant", Content: reply})
	c.JSON(http.StatusOK, resp)
}
