package wire

// APIResponse is the JSON envelope returned by every REST endpoint.
type APIResponse[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// SendChatMessageRequest is the body of POST /v1/projects/:id/chat/message.
//
// The author is either an existing stakeholder (StakeholderID) or an ad-hoc
// name and role.
type SendChatMessageRequest struct {
	Message       string `json:"message"`
	StakeholderID string `json:"stakeholder_id,omitempty"`
	Role          Role   `json:"role,omitempty"`
	AuthorName    string `json:"author_name,omitempty"`
	IsAI          bool   `json:"is_ai,omitempty"`
}

// UpdateAgentStatusRequest is the body of
// POST /v1/projects/:id/agents/:agentId/status. Type and Name are only
// required the first time an agent reports.
type UpdateAgentStatusRequest struct {
	Status        AgentStatus `json:"status"`
	Type          AgentType   `json:"type,omitempty"`
	Name          string      `json:"name,omitempty"`
	CurrentTask   string      `json:"current_task,omitempty"`
	AgentverseURL string      `json:"agentverse_url,omitempty"`
}

// Stakeholder is a human participant in a project.
type Stakeholder struct {
	ID        string `json:"id"`
	ProjectID ID     `json:"project_id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Role      Role   `json:"role"`
	CreatedAt string `json:"created_at"`
}

// CreateStakeholderRequest is the body of POST /v1/projects/:id/stakeholders.
type CreateStakeholderRequest struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
}
