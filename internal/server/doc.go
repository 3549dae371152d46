// Package server implements the MCP (Model Context Protocol) tool bridge for
// manuscript annotation.
//
// This package provides a JSON-RPC 2.0 server that exposes the manuscript
// catalog and the page annotation core as tools, so that a presentation layer
// (a web front end, an editor plugin, or an MCP-compatible assistant) can drive
// annotation without linking Go code.
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
// Requests are handled one at a time in arrival order.
//
// # Available Tools
//
// Catalog:
//   - manuscript_create: Create a manuscript from its metadata
//   - manuscript_list: List manuscripts with metadata
//   - manuscript_open: One manuscript with century range and pages
//   - manuscript_images: Page image names of a manuscript
//   - images_save: Upload page images
//
// Page annotation:
//   - page_info: Dimensions and format of a page image
//   - page_save: Sort, assign and store a page's boxes and lines
//   - page_load: Stored annotation of a page
//   - page_overlay: Page rendered with its annotation
//   - page_crop_box: One box as PNG
//
// Assistance:
//   - page_detect: Lines and word boxes from ink projection profiles
//   - page_ocr_box: Tesseract OCR of one box
//   - page_suggest: Lines and word boxes from whole-page OCR
//
// Pure helpers:
//   - centuries_parse: Century range of a dating text
//   - geometry_sort: Sort and index boxes and lines
//   - geometry_assign: Sort and assign boxes to lines without storing
//
// Page tools address a page by manuscript name and image file name; the
// server never accepts raw paths.
//
// # Image Caching
//
// Decoded page images are cached by path and reused across tool calls.
// images_save evicts the pages it overwrites.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: "Tool execution failed"
//   - data: ToolErrorData with the error code (e.g. "COLLISION"), the
//     offending identifier and a readable message
//
// # Usage
//
//	repo, err := manuscript.NewRepository("./manuscripts")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	srv := server.New(repo, server.WithOCRLanguage("grc"))
//	if err := srv.Serve(os.Stdin, os.Stdout); err != nil {
//	    log.Fatal(err)
//	}
package server
