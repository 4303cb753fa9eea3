package mcp

// SearchSessionsInput defines the input schema for the search_sessions tool.
type SearchSessionsInput struct {
	Query     string `json:"query" jsonschema:"the search query, matched against session summaries and plan paths"`
	Limit     int    `json:"limit,omitempty" jsonschema:"maximum number of results, default 10"`
	PlansOnly bool   `json:"plans_only,omitempty" jsonschema:"only return plan-mode sessions"`
}

// SessionResult is one indexed session as returned by the tools.
type SessionResult struct {
	SessionID        string   `json:"session_id" jsonschema:"the session identifier"`
	Timestamp        string   `json:"timestamp,omitempty" jsonschema:"when the session ended, RFC 3339"`
	Summary          string   `json:"summary" jsonschema:"one-paragraph summary of the session"`
	PlanMode         bool     `json:"plan_mode,omitempty" jsonschema:"true when the session wrote a plan"`
	PlanPaths        []string `json:"plan_paths,omitempty" jsonschema:"plan files the session wrote"`
	MadeEdits        bool     `json:"made_edits,omitempty" jsonschema:"true when the session edited project files"`
	ContinuesSession string   `json:"continues_session,omitempty" jsonschema:"id of the plan session this one continues"`
	Score            float64  `json:"score,omitempty" jsonschema:"relevance score for search results"`
}

// SearchSessionsOutput defines the output schema for the search_sessions tool.
type SearchSessionsOutput struct {
	Results []SessionResult `json:"results" jsonschema:"ranked matching sessions"`
}

// LinkedSessionsInput defines the input schema for the linked_sessions tool.
type LinkedSessionsInput struct {
	SessionID string `json:"session_id" jsonschema:"the session whose continuation chain is wanted"`
}

// LinkedSessionsOutput defines the output schema for the linked_sessions tool.
type LinkedSessionsOutput struct {
	SessionIDs []string        `json:"session_ids" jsonschema:"every session in the chain, sorted, including the queried one"`
	Sessions   []SessionResult `json:"sessions" jsonschema:"index entries for the chain members that are indexed"`
}

// SessionContextInput defines the input schema for the session_context tool.
type SessionContextInput struct {
	SessionID string `json:"session_id" jsonschema:"the session to load context for"`
}

// SessionContextOutput defines the output schema for the session_context tool.
type SessionContextOutput struct {
	SessionID           string   `json:"session_id"`
	Summary             string   `json:"summary,omitempty" jsonschema:"indexed summary, empty when the session is not indexed"`
	ContinuesSession    string   `json:"continues_session,omitempty" jsonschema:"id of the plan session this one continues"`
	InitialRequest      string   `json:"initial_request,omitempty" jsonschema:"the first substantive user message"`
	UserMessages        []string `json:"user_messages,omitempty" jsonschema:"budget-capped user message history"`
	PlanMode            bool     `json:"plan_mode,omitempty"`
	PlanPaths           []string `json:"plan_paths,omitempty" jsonschema:"plan files the session wrote"`
	ReferencedPlanPaths []string `json:"referenced_plan_paths,omitempty" jsonschema:"plan files the session read"`
	MadeEdits           bool     `json:"made_edits,omitempty"`
	Slug                string   `json:"slug,omitempty" jsonschema:"session slug when the host recorded one"`
	TimestampStart      string   `json:"timestamp_start,omitempty"`
	TimestampEnd        string   `json:"timestamp_end,omitempty"`
}
