// Package voice connects the gateway to the voice provider's chat session.
//
// A Session is the provider connection: connect, disconnect, a ready state
// and a stream of inbound messages. Client implements Session over the
// provider's websocket chat endpoint. Bridge sits between a Session and a
// tool dispatcher: every tool_call message is dispatched once per
// tool_call_id on its own goroutine and the outcome is sent back on the
// same session, or dropped if the session is no longer open.
package voice
