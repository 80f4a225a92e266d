package models

// Project is a collaboration room owner.
type Project struct {
	ID        string
	Name      string
	CreatedAt string
}

// Stakeholder is a human participant in a project.
type Stakeholder struct {
	ID        string
	ProjectID string
	Name      string
	Email     string
	Role      string
	CreatedAt string
}

// ChatMessage is a persisted chat line.
type ChatMessage struct {
	ID         string
	ProjectID  string
	AuthorID   string
	AuthorName string
	Role       string
	Text       string
	IsAI       bool
	CreatedAt  string
}

// Agent is the latest reported state of an automation agent.
type Agent struct {
	ID            string
	ProjectID     string
	Type          string
	Name          string
	Status        string
	CurrentTask   string
	AgentverseURL string
	UpdatedAt     string
}
