package preview

import (
	"fmt"
	"log/slog"

	"github.com/vango-dev/labeled-input/pkg/dom"
	"github.com/vango-dev/labeled-input/pkg/host"
	"github.com/vango-dev/labeled-input/pkg/render"
	"github.com/vango-dev/labeled-input/pkg/runtime"
)

// MessageType identifies a preview message.
type MessageType string

const (
	// Client to server.
	MessageInput    MessageType = "input"
	MessageChange   MessageType = "change"
	MessageBlur     MessageType = "blur"
	MessageKeyPress MessageType = "keypress"
	MessageKeyUp    MessageType = "keyup"
	MessageAttr     MessageType = "attr"
	MessageLabel    MessageType = "label"

	// Server to client.
	MessageRender MessageType = "render"
	MessageEvent  MessageType = "event"
	MessageError  MessageType = "error"
)

// ClientMessage is an interaction sent by the preview page.
type ClientMessage struct {
	Type MessageType `json:"type"`

	// Value is the control value for input, or the attribute value for
	// attr. A nil value in an attr message removes the attribute.
	Value *string `json:"value,omitempty"`

	// Key is the key name for keypress and keyup.
	Key string `json:"key,omitempty"`

	// Name is the attribute name for attr.
	Name string `json:"name,omitempty"`
}

// ServerMessage is sent to the preview page.
type ServerMessage struct {
	Type   MessageType `json:"type"`
	HTML   string      `json:"html,omitempty"`
	Event  string      `json:"event,omitempty"`
	Detail any         `json:"detail,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// FieldEvents are the component events forwarded to the page.
var FieldEvents = []string{"input", "change", "blur", "keypress", "keyup", "error"}

// Session is one live field driven by one preview connection.
type Session struct {
	ID     string
	field  *render.Field
	logger *slog.Logger
	events []ServerMessage
	offs   runtime.Disposers
}

func newSession(id string, def *host.Definition, config render.FieldConfig) (*Session, error) {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	field, err := render.NewField(def, config)
	if err != nil {
		return nil, err
	}
	s := &Session{ID: id, field: field, logger: config.Logger}

	for _, typ := range FieldEvents {
		record := func(e *dom.Event) {
			s.events = append(s.events, ServerMessage{Type: MessageEvent, Event: e.Type, Detail: e.Detail})
		}
		if def.Dispatch == host.DispatchComposed {
			s.offs.Add(field.Element.Node().AddEventListener(typ, record))
		} else {
			s.offs.Add(field.Element.On(typ, record))
		}
	}
	return s, nil
}

// Handle applies msg to the field and returns the events it raised
// followed by a fresh render.
func (s *Session) Handle(msg ClientMessage) []ServerMessage {
	s.events = s.events[:0]
	if err := s.apply(msg); err != nil {
		s.logger.Warn("preview: message rejected", "session", s.ID, "type", msg.Type, "error", err)
		return []ServerMessage{{Type: MessageError, Error: err.Error()}}
	}

	err := s.field.Drain()
	out := append([]ServerMessage(nil), s.events...)
	if err != nil {
		out = append(out, ServerMessage{Type: MessageError, Error: err.Error()})
	}
	return append(out, s.Render())
}

func (s *Session) apply(msg ClientMessage) error {
	control := s.field.Control()
	switch msg.Type {
	case MessageInput:
		if msg.Value != nil {
			control.SetValue(*msg.Value)
		}
		control.DispatchEvent(dom.NewEvent("input", dom.EventInit{}))
	case MessageChange, MessageBlur:
		control.DispatchEvent(dom.NewEvent(string(msg.Type), dom.EventInit{}))
	case MessageKeyPress, MessageKeyUp:
		control.DispatchEvent(dom.NewEvent(string(msg.Type), dom.EventInit{Key: msg.Key}))
	case MessageAttr:
		if msg.Name == "" {
			return fmt.Errorf("attr message without a name")
		}
		node := s.field.Element.Node()
		if msg.Value == nil {
			node.RemoveAttribute(msg.Name)
		} else {
			node.SetAttribute(msg.Name, *msg.Value)
		}
	case MessageLabel:
		if label := s.field.Element.Root().Find("label"); label != nil {
			label.DispatchEvent(dom.NewEvent("click", dom.EventInit{Bubbles: true}))
		}
	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
	return nil
}

// Render returns the field's current markup.
func (s *Session) Render() ServerMessage {
	return ServerMessage{Type: MessageRender, HTML: s.field.HTML()}
}

// Close destroys the field and drops event subscriptions.
func (s *Session) Close() {
	s.offs.Run()
	s.field.Close()
}
