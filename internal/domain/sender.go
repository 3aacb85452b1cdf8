package domain

import "context"

// Keyboard is the reply keyboard attached to an outbound message. The bot
// constructs it; the messaging vendor client serializes it.
type Keyboard struct {
	Buttons []Button
}

// Button is one keyboard button. ActionBody is the action token the client
// sends back as message text when the button is pressed — menu position is
// carried entirely by these tokens, never stored server-side.
type Button struct {
	Text       string
	ActionBody string
	Columns    int // grid width 1..6, vendor default when 0
}

// Sender delivers outbound messages. Implemented by the Viber client;
// faked in tests.
type Sender interface {
	Send(ctx context.Context, receiverID, text string) error
	SendKeyboard(ctx context.Context, receiverID, text string, kb Keyboard) error
}
