package model

// RawMessage is a single message block lifted from an export page, already
// placed at its chronological position within the conversation.
type RawMessage struct {
	Author string
	Text   string
}

// Conversation is the flat-corpus output for one folder: cleaned message
// bodies in chronological order.
type Conversation struct {
	ID       string   `json:"id"`
	Messages []string `json:"messages"`
}

// Pair is one (prompt, response) training example built from two adjacent
// dialogue turns.
type Pair struct {
	Prompt   string `json:"prompt"`
	Response string `json:"response"`
}

// Result wraps one conversation's output alongside an optional error
// encountered while processing it.
type Result struct {
	ID       string
	Messages []string
	Pairs    []Pair
	Skipped  bool
	Err      error
}
