package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// Schemas shared by several tools.
var (
	manuscriptProperty = map[string]interface{}{
		"type":        "string",
		"description": "Derived manuscript name as returned by manuscript_create or manuscript_list",
	}

	pageProperty = map[string]interface{}{
		"type":        "string",
		"description": "Page image file name inside the manuscript's images directory, e.g. \"p001.png\"",
	}

	boxSchema = map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"x0":      map[string]interface{}{"type": "number"},
			"y0":      map[string]interface{}{"type": "number"},
			"x1":      map[string]interface{}{"type": "number"},
			"y1":      map[string]interface{}{"type": "number"},
			"line_no": map[string]interface{}{"type": "integer", "description": "Assigned line index, -1 when unassigned"},
			"index":   map[string]interface{}{"type": "integer", "description": "1-based rank after sorting"},
		},
		"required": []string{"x0", "y0", "x1", "y1"},
	}

	lineSchema = map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"x0":    map[string]interface{}{"type": "number"},
			"y0":    map[string]interface{}{"type": "number"},
			"x1":    map[string]interface{}{"type": "number"},
			"y1":    map[string]interface{}{"type": "number"},
			"index": map[string]interface{}{"type": "integer", "description": "1-based rank after sorting"},
		},
		"required": []string{"x0", "y0", "x1", "y1"},
	}
)

// pageSchema builds an input schema addressing one page, with extra
// properties and extra required names.
func pageSchema(extra map[string]interface{}, required ...string) map[string]interface{} {
	props := map[string]interface{}{
		"manuscript": manuscriptProperty,
		"page":       pageProperty,
	}
	for k, v := range extra {
		props[k] = v
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": props,
		"required":   append([]string{"manuscript", "page"}, required...),
	}
}

// boxRefProperties selects a box by coordinates or by stored index.
func boxRefProperties() map[string]interface{} {
	return map[string]interface{}{
		"box": boxSchema,
		"index": map[string]interface{}{
			"type":        "integer",
			"description": "Index of a stored box of the page, used when box is omitted",
		},
	}
}

func arrayOf(items map[string]interface{}, description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"items":       items,
		"description": description,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	cropProps := boxRefProperties()
	cropProps["scale"] = map[string]interface{}{
		"type":        "number",
		"description": "Optional scale factor (e.g., 2.0 to double size), at most 8. Default 1.0",
		"default":     1.0,
	}

	ocrProps := boxRefProperties()
	ocrProps["language"] = map[string]interface{}{
		"type":        "string",
		"description": "Tesseract language code, e.g. \"grc\", \"lat\" or \"grc+ell\". Defaults to the configured language",
	}

	return []Tool{
		// Catalog
		{
			Name:        "manuscript_create",
			Description: "Create a manuscript record. The directory name is derived from the Work title (lowercase ASCII, at most 26 characters). Fails with COLLISION if the name is taken.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"metadata": map[string]interface{}{
						"type":        "object",
						"description": "Metadata fields in display order. Work is required; Author, Language, Country, City, Institution and Centuries are recognized",
						"properties": map[string]interface{}{
							"Work":        map[string]interface{}{"type": "string"},
							"Author":      map[string]interface{}{"type": "string"},
							"Language":    map[string]interface{}{"type": "string"},
							"Country":     map[string]interface{}{"type": "string"},
							"City":        map[string]interface{}{"type": "string"},
							"Institution": map[string]interface{}{"type": "string"},
							"Centuries":   map[string]interface{}{"type": "string", "description": "e.g. \"11th century\" or \"11th to 13th century\""},
						},
						"additionalProperties": map[string]interface{}{"type": "string"},
						"required":             []string{"Work"},
					},
				},
				"required": []string{"metadata"},
			},
		},
		{
			Name:        "manuscript_list",
			Description: "List every manuscript in the catalog with its metadata.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "manuscript_open",
			Description: "Get one manuscript's metadata, its parsed century range and its page images.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name": manuscriptProperty,
				},
				"required": []string{"name"},
			},
		},
		{
			Name:        "manuscript_images",
			Description: "List the page image file names of a manuscript.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"manuscript": manuscriptProperty,
				},
				"required": []string{"manuscript"},
			},
		},
		{
			Name:        "images_save",
			Description: "Upload page images into a manuscript, overwriting pages of the same name. Every file is decoded first; one bad file fails the whole batch.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"manuscript": manuscriptProperty,
					"files": arrayOf(map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"name":    map[string]interface{}{"type": "string", "description": "Target file name; its extension selects the stored format"},
							"content": map[string]interface{}{"type": "string", "description": "Base64-encoded image bytes"},
						},
						"required": []string{"name", "content"},
					}, "Images to store"),
				},
				"required": []string{"manuscript", "files"},
			},
		},

		// Page annotation
		{
			Name:        "page_info",
			Description: "Get a page image's dimensions, format and file size.",
			InputSchema: pageSchema(nil),
		},
		{
			Name:        "page_save",
			Description: "Store a page's annotation. Lines and boxes are sorted top to bottom, indexed from 1 and every box is assigned to the line it lies on.",
			InputSchema: pageSchema(map[string]interface{}{
				"boxes": arrayOf(boxSchema, "Word or glyph boxes in page pixels"),
				"lines": arrayOf(lineSchema, "Text lines, drawn as bands around or strokes through the text"),
			}, "boxes", "lines"),
		},
		{
			Name:        "page_load",
			Description: "Load a page's stored annotation. A page never annotated has empty sets.",
			InputSchema: pageSchema(nil),
		},
		{
			Name:        "page_overlay",
			Description: "Render a page with its lines and boxes drawn on top, one color per line, as base64 PNG. Draws the stored annotation unless boxes or lines are given.",
			InputSchema: pageSchema(map[string]interface{}{
				"boxes": arrayOf(boxSchema, "Optional unsaved boxes to preview"),
				"lines": arrayOf(lineSchema, "Optional unsaved lines to preview"),
				"stroke": map[string]interface{}{
					"type":        "integer",
					"description": "Outline thickness in pixels. Default 2",
					"default":     2,
				},
				"labels": map[string]interface{}{
					"type":        "boolean",
					"description": "Draw box and line indices. Default true",
					"default":     true,
				},
				"max_width": map[string]interface{}{
					"type":        "integer",
					"description": "Downscale the result to at most this width. Default 0 (original size)",
					"default":     0,
				},
				"unassigned_color": map[string]interface{}{
					"type":        "string",
					"description": "Hex color of boxes on no line. Default \"#808080\"",
					"default":     "#808080",
				},
			}),
		},
		{
			Name:        "page_crop_box",
			Description: "Crop one annotation box from a page and return it as base64-encoded PNG.",
			InputSchema: pageSchema(cropProps),
		},

		// Assistance
		{
			Name:        "page_detect",
			Description: "Propose lines and word boxes for a page from its ink distribution. Optionally store the proposal as the page's annotation.",
			InputSchema: pageSchema(map[string]interface{}{
				"options": map[string]interface{}{
					"type":        "object",
					"description": "Detection tuning; omitted or zero fields take the defaults",
					"properties": map[string]interface{}{
						"threshold":       map[string]interface{}{"type": "integer", "description": "Binarization level 1-255, 0 for automatic (Otsu)"},
						"min_row_ink":     map[string]interface{}{"type": "number", "description": "Fraction of the width that must be inked for a text row. Default 0.005"},
						"max_row_gap":     map[string]interface{}{"type": "integer", "description": "Blank rows bridged inside one line. Default 1"},
						"min_line_height": map[string]interface{}{"type": "integer", "description": "Minimum line height in pixels. Default 4"},
						"min_gap":         map[string]interface{}{"type": "integer", "description": "Blank columns separating words. Default 6"},
						"min_box_width":   map[string]interface{}{"type": "integer", "description": "Minimum box width in pixels. Default 2"},
					},
				},
				"save": map[string]interface{}{
					"type":        "boolean",
					"description": "Store the result as the page's annotation. Default false",
					"default":     false,
				},
			}),
		},
		{
			Name:        "page_ocr_box",
			Description: "Read the text inside one annotation box with Tesseract. Returns text, confidence and words in page coordinates.",
			InputSchema: pageSchema(ocrProps),
		},
		{
			Name:        "page_suggest",
			Description: "Run OCR on a whole page and propose its text lines and word boxes, sorted and assigned. Optionally store the proposal.",
			InputSchema: pageSchema(map[string]interface{}{
				"language": ocrProps["language"],
				"save": map[string]interface{}{
					"type":        "boolean",
					"description": "Store the result as the page's annotation. Default false",
					"default":     false,
				},
			}),
		},

		// Pure helpers
		{
			Name:        "centuries_parse",
			Description: "Parse a Centuries value such as \"11th to 13th century\" into a [first, last] range. An empty text yields the default range.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Free-text dating",
					},
				},
			},
		},
		{
			Name:        "geometry_sort",
			Description: "Sort boxes and lines top to bottom by vertical midpoint and index them from 1. Ties keep their input order.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"boxes": arrayOf(boxSchema, "Boxes to sort"),
					"lines": arrayOf(lineSchema, "Lines to sort"),
				},
			},
		},
		{
			Name:        "geometry_assign",
			Description: "Sort lines and boxes, then assign each box to the line it lies on, without storing anything. Boxes on no line get line_no -1.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"boxes": arrayOf(boxSchema, "Boxes to assign"),
					"lines": arrayOf(lineSchema, "Candidate lines"),
				},
				"required": []string{"boxes", "lines"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
