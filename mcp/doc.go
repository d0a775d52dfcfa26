// Package mcp implements the protocol adapter for the OIC monitor service.
//
// The remote service speaks an MCP-style JSON-RPC dialect: tool calls are
// POSTed to a streaming HTTP endpoint and answered either as a plain JSON
// document or as a text/event-stream of "data:" framed lines. The decoder
// normalizes both framings into one canonical Outcome so stage functions
// never see the wire shape.
package mcp
