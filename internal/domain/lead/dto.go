package lead

import "strings"

// LeadRequest is the create/update body. Phone and email formats are checked on the entity.
type LeadRequest struct {
	FullName    string `json:"full_name" form:"full_name"`
	Email       string `json:"email" form:"email"`
	Phone       string `json:"phone" form:"phone"`
	Country     string `json:"country" form:"country"`
	Timezone    string `json:"timezone" form:"timezone"`
	IncomeRange string `json:"income_range" form:"income_range"`
	AgentID     *int64 `json:"agent_id" form:"agent_id"`
	Comment     string `json:"comment" form:"comment"`

	// appended to the comment thread, authored by the caller
	AgentComment   string `json:"agent_comment" form:"agent_comment"`
	ManagerComment string `json:"manager_comment" form:"manager_comment"`
}

func (r *LeadRequest) apply(l *Lead) {
	l.FullName = strings.TrimSpace(r.FullName)
	l.Email = strings.TrimSpace(r.Email)
	l.Phone = strings.TrimSpace(r.Phone)
	l.Country = strings.TrimSpace(r.Country)
	l.Timezone = strings.TrimSpace(r.Timezone)
	l.IncomeRange = strings.TrimSpace(r.IncomeRange)
	l.Comment = strings.TrimSpace(r.Comment)
	l.AgentID = r.AgentID
	if l.AgentID != nil && *l.AgentID == 0 {
		l.AgentID = nil
	}
}

// threadComments converts the optional agent/manager inputs into comments.
func (r *LeadRequest) threadComments(authorID int64) []Comment {
	var out []Comment
	if s := strings.TrimSpace(r.AgentComment); s != "" {
		out = append(out, Comment{AuthorID: &authorID, Role: RoleAgent, Content: s})
	}
	if s := strings.TrimSpace(r.ManagerComment); s != "" {
		out = append(out, Comment{AuthorID: &authorID, Role: RoleManager, Content: s})
	}
	return out
}

type CommentRequest struct {
	Role    string `json:"role" form:"role" validate:"required,oneof=agent manager"`
	Content string `json:"content" form:"content" validate:"required"`
}

type LeadListResponse struct {
	Leads []Lead `json:"leads"`
	Total int    `json:"total"`
}
