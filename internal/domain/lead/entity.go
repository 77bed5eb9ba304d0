package lead

import (
	"time"

	"leadcrm/internal/domain"
	"leadcrm/internal/pkg/validator"
)

// Comment roles.
const (
	RoleAgent   = "agent"
	RoleManager = "manager"
)

// Lead is a prospective customer record.
type Lead struct {
	ID          int64  `json:"id" gorm:"primaryKey"`
	FullName    string `json:"full_name" gorm:"size:255;not null" validate:"required,max=255"`
	Email       string `json:"email" gorm:"size:254;uniqueIndex;not null" validate:"required,max=254,lead_email"`
	Phone       string `json:"phone" gorm:"size:20;not null" validate:"required,max=20,lead_phone"`
	Country     string `json:"country" gorm:"size:100" validate:"max=100"`
	Timezone    string `json:"timezone" gorm:"size:100" validate:"max=100,timezone"`
	IncomeRange string `json:"income_range" gorm:"size:100" validate:"max=100"`

	AgentID *int64       `json:"agent_id" gorm:"index"`
	Agent   *domain.User `json:"agent,omitempty" gorm:"foreignKey:AgentID;constraint:OnDelete:SET NULL"`

	Comment  string    `json:"comment" gorm:"type:text"`
	Comments []Comment `json:"comments,omitempty" gorm:"foreignKey:LeadID;constraint:OnDelete:CASCADE"`

	CreatedAt  time.Time `json:"created_at" gorm:"index"`
	ModifiedAt time.Time `json:"modified_at" gorm:"autoUpdateTime"`
}

func (Lead) TableName() string { return "leads" }

// Validate runs the field rules shared by the CRUD path and the importer.
// Returns field -> message, nil when the lead may be persisted.
func (l *Lead) Validate() map[string]string {
	return validator.Validate(l)
}

// Comment is an append-only note on a lead.
type Comment struct {
	ID        int64        `json:"id" gorm:"primaryKey"`
	LeadID    int64        `json:"lead_id" gorm:"index;not null"`
	AuthorID  *int64       `json:"author_id" gorm:"index"`
	Author    *domain.User `json:"author,omitempty" gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL"`
	Role      string       `json:"role" gorm:"size:10;not null" validate:"required,oneof=agent manager"`
	Content   string       `json:"content" gorm:"type:text;not null" validate:"required"`
	CreatedAt time.Time    `json:"created_at"`
}

func (Comment) TableName() string { return "lead_comments" }
