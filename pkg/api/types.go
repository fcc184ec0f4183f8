package api

// Request/response types for the REST surface and WebSocket feed.

// AccountSlot is one positional account in an execute request.
type AccountSlot struct {
	Pubkey     string `json:"pubkey"`          // base58
	IsSigner   bool   `json:"isSigner"`        // caller signed for this slot
	IsWritable bool   `json:"isWritable"`      // venue may mutate this slot
	Owner      string `json:"owner,omitempty"` // owning program, base58
}

// ExecuteRequest submits one raw venue instruction through the gateway.
type ExecuteRequest struct {
	Accounts []AccountSlot `json:"accounts"`
	Data     string        `json:"data"` // base64 instruction payload
}

// ExecuteResponse reports the outcome of one proxied request.
type ExecuteResponse struct {
	Forwarded   bool   `json:"forwarded"`
	Instruction string `json:"instruction"`
	Error       string `json:"error,omitempty"`
}

// DeriveResponse is the offline custody-address preview.
type DeriveResponse struct {
	Market            string `json:"market"`
	Owner             string `json:"owner"`
	OpenOrders        string `json:"openOrders"`
	Bump              uint8  `json:"bump"`
	InitAuthority     string `json:"initAuthority"`
	InitAuthorityBump uint8  `json:"initAuthorityBump"`
}

// RequestInfo is one journal entry.
type RequestInfo struct {
	Seq         uint64   `json:"seq"`
	Time        int64    `json:"time"` // unix milliseconds
	Instruction string   `json:"instruction"`
	Status      string   `json:"status"`
	Error       string   `json:"error,omitempty"`
	Accounts    []string `json:"accounts"`
}

// WSSubscribeRequest is the inbound WebSocket control message.
type WSSubscribeRequest struct {
	Op       string   `json:"op"` // "subscribe" or "unsubscribe"
	Channels []string `json:"channels"`
}

// WSEvent wraps one broadcast message.
type WSEvent struct {
	Channel string `json:"channel"`
	Data    any    `json:"data"`
}
