package orchestrator

import (
	"context"
	"fmt"
	"time"
)

const (
	MsgTriggerSync = "triggerSync"
	MsgPing        = "ping"
	MsgWakeup      = "wakeup"
)

type Message struct {
	Type  string `json:"type"`
	TabID int    `json:"tabId,omitempty"`
	URL   string `json:"url,omitempty"`
}

type Response struct {
	Status    string     `json:"status,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Error     string     `json:"error,omitempty"`
}

func (o *Orchestrator) Handle(ctx context.Context, m Message) Response {
	switch m.Type {
	case MsgPing:
		ts := o.now()
		return Response{Status: "ok", Timestamp: &ts}
	case MsgWakeup:
		return Response{Status: "awake"}
	case MsgTriggerSync:
		started, err := o.TriggerSync(ctx, m.TabID, m.URL)
		if err != nil {
			return Response{Error: err.Error()}
		}
		if !started {
			return Response{Status: "skipped"}
		}
		return Response{Status: "started"}
	default:
		return Response{Error: fmt.Sprintf("%v: %q", errUnknownMessage, m.Type)}
	}
}
