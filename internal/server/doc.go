// Package server implements the MCP (Model Context Protocol) server for
// locating puzzle pieces in completed puzzles.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// The notifications/initialized notification gets no response.
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Matching:
//   - puzzle_find_piece: Find where a piece fits in the completed puzzle
//   - puzzle_estimate_cost: Report the scaled sizes and search cost without searching
//
// Match Follow-up:
//   - puzzle_annotate_match: Circle a matched region on the puzzle
//   - puzzle_crop_match: Extract a matched region, optionally zoomed
//   - puzzle_verify_match: Re-score a placement at full resolution
//
// # Image Caching
//
// Images are cached by path and reused across tool calls, so follow-up tools
// do not re-read the puzzle. puzzle_find_piece evicts its two inputs when it
// returns, since a piece is normally matched once.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: {"error": "<Go error string>", "kind": "<class>"}
//
// kind is one of invalid_scale, size_mismatch, decode_error, file_too_large
// or search_too_costly, and is omitted for other failures.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := server.New(cfg).Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
