// Package tools holds the tool catalog the agent can draw on and the registry
// that invokes them. Tool failures are converted to observable text so a bad
// tool can never kill a conversation.
package tools

import "context"

// Handler runs one tool invocation. Args values are string or int, as decoded
// from the wire format.
type Handler func(ctx context.Context, args map[string]any) (string, error)

// Tool describes one capability offered to the agent. Signature is the
// argument grammar shown verbatim in the agent prompt, e.g.
// "roll_dice:notation=<XdY>:num_rolls=<count>".
type Tool struct {
	Name        string
	Description string
	Signature   string
	Handler     Handler
}
