package upbit

// SubscribeRequest describes one websocket subscription: a client ticket plus
// a stream type and the instrument codes the connection should carry.
type SubscribeRequest struct {
	Ticket         string
	Type           string
	Codes          []string
	IsOnlySnapshot *bool
	IsOnlyRealtime *bool
}

// Payload renders the request in the wire format the feed expects: a JSON
// array of two objects sent as a single text frame.
func (r SubscribeRequest) Payload() []any {
	body := map[string]any{
		"type":  r.Type,
		"codes": r.Codes,
	}
	if r.IsOnlySnapshot != nil {
		body["is_only_snapshot"] = *r.IsOnlySnapshot
	}
	if r.IsOnlyRealtime != nil {
		body["is_only_realtime"] = *r.IsOnlyRealtime
	}

	return []any{
		map[string]any{"ticket": r.Ticket},
		body,
	}
}
