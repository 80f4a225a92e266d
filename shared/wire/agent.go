package wire

// AgentType identifies what an automation agent works on.
type AgentType string

const (
	AgentPlanner     AgentType = "planner"
	AgentFrontend    AgentType = "frontend"
	AgentBackend     AgentType = "backend"
	AgentFacilitator AgentType = "facilitator"
	AgentPitch       AgentType = "pitch"
)

// Valid reports whether t is a known agent type.
func (t AgentType) Valid() bool {
	switch t {
	case AgentPlanner, AgentFrontend, AgentBackend, AgentFacilitator, AgentPitch:
		return true
	}
	return false
}

// AgentStatus is the activity state of an agent.
type AgentStatus string

const (
	AgentIdle      AgentStatus = "idle"
	AgentThinking  AgentStatus = "thinking"
	AgentExecuting AgentStatus = "executing"
	AgentError     AgentStatus = "error"
)

// Valid reports whether s is a known agent status.
func (s AgentStatus) Valid() bool {
	switch s {
	case AgentIdle, AgentThinking, AgentExecuting, AgentError:
		return true
	}
	return false
}

// Agent is the payload of EventAgentStatus and one presence entry. Each event
// carries the complete record.
type Agent struct {
	ID ID `json:"id"`
	// ProjectID routes the status event to a room. Optional on the client.
	ProjectID     ID          `json:"project_id,omitempty"`
	Type          AgentType   `json:"type,omitempty"`
	Name          string      `json:"name,omitempty"`
	Status        AgentStatus `json:"status"`
	CurrentTask   string      `json:"current_task,omitempty"`
	AgentverseURL string      `json:"agentverse_url,omitempty"`
}
