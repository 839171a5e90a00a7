// Package fieldproto implements the field-oriented command line grammar used
// by fieldsh and the transports that carry it.
//
// A line is a flat run of 7-bit characters of at most MaxChars bytes. The
// tokenizer splits it into at most MaxFields alphanumeric fields, rewriting
// every delimiter to Terminator in place, and tags each field alpha or
// numeric from its first character. A Dispatcher then matches field 0
// against the registered verbs and runs the command.
//
// # Tokenizing
//
//	var line fieldproto.Line
//	line.Load("set 3, 4")
//	fields := line.Parse()
//
//	fields.Count()          // 3
//	line.FieldString(0)     // "set", true
//	line.FieldInteger(1)    // 3
//	line.IsCommand("set", 2) // true
//
// The accessors never fail: an absent field yields ("", false) or 0. Use
// FieldIntegerChecked when "absent" must be told apart from zero.
//
// # Dispatching
//
//	d := fieldproto.NewDefaultDispatcher()
//	resp := d.Execute("alert hello")
//	fmt.Println(resp.Data) // "alert: hello"
//
// Unmatched verbs, including an empty line, answer an error response with
// InvalidCommandMessage.
//
// # Transports
//
// ServeStream runs the read/dispatch/reply loop over a character stream
// (raw terminal or serial link) using CharReader for line editing.
//
// Server exposes a Dispatcher on a Unix domain socket using a text,
// line-oriented protocol:
//
//	Request:           CMD:<line>\n   (prefix optional)
//	Success response:  OK:<response-data>\n
//	Error response:    ERR:<error-message>\n
//
//	CLI: CMD:ping
//	SRV: OK:pong
//	CLI: CMD:set 3 4
//	SRV: OK:set: 7
//	CLI: CMD:foo
//	SRV: ERR:Invalid Command
//
// The same server answers websocket text messages through
// Server.WebSocketHandler. Client connects to a socket server:
//
//	client := fieldproto.NewClient()
//	if err := client.DiscoverAndConnect(); err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Disconnect()
//
//	resp, err := client.Send("set 40 2")
//
// # Thread Safety
//
// Tokenize and the FieldTable accessors are pure functions over the caller's
// buffer. A Line must not be shared between goroutines. Dispatcher and
// Client are safe for concurrent use.
package fieldproto
