package stratum

import (
	"encoding/json"
	"errors"
	"fmt"

	"bchwatch/internal/job"
)

// Request represents a minimal Stratum V1 JSON-RPC request.
type Request struct {
	ID     int    `json:"id"`
	Method string `json:"method"`
	Params []any  `json:"params"`
}

// frame is the union of everything a pool sends down the line: responses
// carry id/result/error, server notifications carry method/params.
type frame struct {
	ID     any             `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
	Result json.RawMessage `json:"result"`
	Error  json.RawMessage `json:"error"`
}

// Request IDs are fixed: the client only ever sends these two calls.
const (
	subscribeID = 1
	authorizeID = 2
)

// Message is one classified line received from the pool.
type Message interface{ isMessage() }

// SubscribeResponse carries the extranonce negotiated by mining.subscribe.
type SubscribeResponse struct {
	ExtraNonce1     string
	ExtraNonce2Size int
	Err             string
}

// AuthorizeResponse is the pool's verdict on mining.authorize.
type AuthorizeResponse struct {
	Authorized bool
	Err        string
}

// JobNotification wraps a mining.notify job template.
type JobNotification struct {
	Template *job.Template
}

// DifficultyNotification carries mining.set_difficulty.
type DifficultyNotification struct {
	Difficulty float64
}

// Banner is a client.show_message text from the pool.
type Banner struct {
	Text string
}

// Unrecognized holds any frame the inspector has no use for. It is logged
// in debug mode and otherwise skipped.
type Unrecognized struct {
	Method string
	Raw    []byte
}

func (SubscribeResponse) isMessage()      {}
func (AuthorizeResponse) isMessage()      {}
func (JobNotification) isMessage()        {}
func (DifficultyNotification) isMessage() {}
func (Banner) isMessage()                 {}
func (Unrecognized) isMessage()           {}

// errNotJSON marks a line that is not a JSON frame at all. Pools send plain
// text for banners and ban notices; those are informational, never fatal.
var errNotJSON = errors.New("not a JSON frame")

// classify parses one raw line into the message variant it represents.
// Unknown methods and unmatched response IDs come back as Unrecognized so
// the read loop can keep going.
func classify(raw []byte) (Message, error) {
	var f frame
	if err := fastJSONUnmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%w: %s", errNotJSON, err)
	}
	switch f.Method {
	case "mining.notify":
		var params []any
		if err := fastJSONUnmarshal(f.Params, &params); err != nil {
			return nil, fmt.Errorf("notify params: %w", err)
		}
		tmpl, err := job.FromNotifyParams(params)
		if err != nil {
			return nil, err
		}
		return JobNotification{Template: tmpl}, nil
	case "mining.set_difficulty":
		var params []any
		if err := fastJSONUnmarshal(f.Params, &params); err != nil || len(params) == 0 {
			return Unrecognized{Method: f.Method, Raw: raw}, nil
		}
		d, ok := params[0].(float64)
		if !ok {
			return Unrecognized{Method: f.Method, Raw: raw}, nil
		}
		return DifficultyNotification{Difficulty: d}, nil
	case "client.show_message":
		var params []any
		if err := fastJSONUnmarshal(f.Params, &params); err == nil && len(params) > 0 {
			if s, ok := params[0].(string); ok {
				return Banner{Text: s}, nil
			}
		}
		return Banner{}, nil
	case "":
		switch {
		case idEquals(f.ID, subscribeID):
			return parseSubscribeResponse(f)
		case idEquals(f.ID, authorizeID):
			return parseAuthorizeResponse(f)
		}
		return Unrecognized{Raw: raw}, nil
	default:
		return Unrecognized{Method: f.Method, Raw: raw}, nil
	}
}

func parseSubscribeResponse(f frame) (Message, error) {
	if msg := errText(f.Error); msg != "" {
		return SubscribeResponse{Err: msg}, nil
	}
	var result []any
	if err := fastJSONUnmarshal(f.Result, &result); err != nil {
		return nil, fmt.Errorf("subscribe result: %w", err)
	}
	if len(result) < 3 {
		return nil, fmt.Errorf("subscribe result: got %d fields, want 3", len(result))
	}
	en1, ok := result[1].(string)
	if !ok {
		return nil, fmt.Errorf("subscribe result: extranonce1 is %T, want string", result[1])
	}
	size, ok := result[2].(float64)
	if !ok || size != float64(int(size)) || size < 0 {
		return nil, fmt.Errorf("subscribe result: bad extranonce2 size %v", result[2])
	}
	return SubscribeResponse{ExtraNonce1: en1, ExtraNonce2Size: int(size)}, nil
}

func parseAuthorizeResponse(f frame) (Message, error) {
	var ok bool
	if len(f.Result) > 0 {
		_ = fastJSONUnmarshal(f.Result, &ok)
	}
	return AuthorizeResponse{Authorized: ok, Err: errText(f.Error)}, nil
}

// errText renders the JSON-RPC error field, whatever shape the pool chose.
func errText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	return string(raw)
}

// idEquals matches a response ID against one of our request IDs. Pools echo
// the ID back as a JSON number, but a few send it as a string.
func idEquals(id any, want int) bool {
	switch v := id.(type) {
	case float64:
		return int(v) == want
	case int:
		return v == want
	case string:
		return v == fmt.Sprintf("%d", want)
	}
	return false
}
