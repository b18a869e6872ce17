package core

import "fmt"

// ThreadIdentity is the composite key addressing persisted conversational
// state: which user, which thread, which campaign, and which agent scope the
// state belongs to. It is passed through every hop unchanged.
type ThreadIdentity struct {
	UserID     string `json:"user_id"`
	ThreadID   string `json:"thread_id"`
	CampaignID string `json:"campaign_id"`
	AgentScope string `json:"agent_scope"`
}

// Key renders the identity as a stable composite key suitable for store
// lookups. All four components participate; empty components are preserved
// positionally so distinct identities never collide.
func (t ThreadIdentity) Key() string {
	return fmt.Sprintf("%s/%s/%s/%s", t.UserID, t.ThreadID, t.CampaignID, t.AgentScope)
}

// WithScope returns a copy of the identity bound to a different agent scope.
func (t ThreadIdentity) WithScope(scope string) ThreadIdentity {
	t.AgentScope = scope
	return t
}
