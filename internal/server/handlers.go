package server

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ironsheep/glyptodon/internal/detection"
	errs "github.com/ironsheep/glyptodon/internal/errors"
	"github.com/ironsheep/glyptodon/internal/geometry"
	"github.com/ironsheep/glyptodon/internal/imaging"
	"github.com/ironsheep/glyptodon/internal/manuscript"
	"github.com/ironsheep/glyptodon/internal/ocr"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "manuscript_create", "page_save").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// ToolErrorData is the data member of a failed tools/call response.
type ToolErrorData struct {
	// Code is the machine-readable error code, e.g. "COLLISION".
	Code errs.Code `json:"code"`

	// Subject identifies the offending record: a file name, a CSV row, a
	// manuscript name or an argument.
	Subject string `json:"subject,omitempty"`

	// Message is the user-facing description.
	Message string `json:"message"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000
// whose data is a ToolErrorData.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		data := toolErrorData(err)
		s.logger.Warn("tool failed", "tool", params.Name, "code", data.Code, "subject", data.Subject, "err", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", data)
	}
	s.logger.Debug("tool done", "tool", params.Name, "elapsed", time.Since(start).Round(time.Millisecond))

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Resolves the manuscript and page the call refers to
//  4. Calls the appropriate manuscript/geometry/imaging/detection/ocr function
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Catalog
	case "manuscript_create":
		return s.handleManuscriptCreate(args)
	case "manuscript_list":
		return s.handleManuscriptList(args)
	case "manuscript_open":
		return s.handleManuscriptOpen(args)
	case "manuscript_images":
		return s.handleManuscriptImages(args)
	case "images_save":
		return s.handleImagesSave(args)

	// Page annotation
	case "page_info":
		return s.handlePageInfo(args)
	case "page_save":
		return s.handlePageSave(args)
	case "page_load":
		return s.handlePageLoad(args)
	case "page_overlay":
		return s.handlePageOverlay(args)
	case "page_crop_box":
		return s.handlePageCropBox(args)

	// Assistance
	case "page_detect":
		return s.handlePageDetect(args)
	case "page_ocr_box":
		return s.handlePageOCRBox(args)
	case "page_suggest":
		return s.handlePageSuggest(args)

	// Pure helpers
	case "centuries_parse":
		return s.handleCenturiesParse(args)
	case "geometry_sort":
		return s.handleGeometrySort(args)
	case "geometry_assign":
		return s.handleGeometryAssign(args)

	default:
		return nil, errs.New(errs.ErrCodeInvalidInput, name, "unknown tool")
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// toolErrorData converts a tool failure into its wire form. Errors without a
// code are reported as INTERNAL_ERROR.
func toolErrorData(err error) ToolErrorData {
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	return ToolErrorData{
		Code:    code,
		Subject: errs.SubjectOf(err),
		Message: errs.UserMessage(err),
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments into v. Missing arguments leave v at
// its zero value.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "arguments", "invalid tool arguments")
	}
	return nil
}

// === Catalog Handlers ===

type manuscriptCreateArgs struct {
	Metadata manuscript.Metadata `json:"metadata"`
}

func (s *Server) handleManuscriptCreate(args json.RawMessage) (interface{}, error) {
	var a manuscriptCreateArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return s.repo.Create(a.Metadata)
}

func (s *Server) handleManuscriptList(args json.RawMessage) (interface{}, error) {
	list, skipped, err := s.repo.Scan()
	if err != nil {
		return nil, err
	}
	problems := make([]ToolErrorData, len(skipped))
	for i, e := range skipped {
		problems[i] = toolErrorData(e)
	}
	return map[string]interface{}{
		"root":        s.repo.Root(),
		"manuscripts": list,
		"count":       len(list),
		"skipped":     problems,
	}, nil
}

type manuscriptArgs struct {
	Name string `json:"name"`
}

// manuscriptView is a manuscript with its dating resolved and its pages listed.
type manuscriptView struct {
	manuscript.Manuscript

	// Centuries is the parsed Centuries value, or the configured default.
	Centuries [2]int `json:"centuries"`

	// CenturiesDefault is set when Centuries is the default range.
	CenturiesDefault bool `json:"centuries_default"`

	Pages []string `json:"pages"`
}

func (s *Server) handleManuscriptOpen(args json.RawMessage) (interface{}, error) {
	var a manuscriptArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	m, err := s.repo.Open(a.Name)
	if err != nil {
		return nil, err
	}
	pages, err := pageNames(m)
	if err != nil {
		return nil, err
	}

	view := manuscriptView{Manuscript: *m, Pages: pages}
	view.Centuries, view.CenturiesDefault = s.centuriesOf(m)
	return view, nil
}

// centuriesOf parses the manuscript's Centuries value, falling back to the
// default range when it is missing or unreadable.
func (s *Server) centuriesOf(m *manuscript.Manuscript) ([2]int, bool) {
	text := m.Metadata.Value(manuscript.KeyCenturies)
	if text == "" {
		return s.centuries, true
	}
	r, err := manuscript.ParseCenturies(text)
	if err != nil {
		s.logger.Warn("unreadable centuries value", "manuscript", m.Name, "value", text, "err", err)
		return s.centuries, true
	}
	return r, false
}

type manuscriptImagesArgs struct {
	Manuscript string `json:"manuscript"`
}

func (s *Server) handleManuscriptImages(args json.RawMessage) (interface{}, error) {
	var a manuscriptImagesArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	m, err := s.repo.Open(a.Manuscript)
	if err != nil {
		return nil, err
	}
	pages, err := pageNames(m)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"manuscript": m.Name,
		"pages":      pages,
		"count":      len(pages),
	}, nil
}

func pageNames(m *manuscript.Manuscript) ([]string, error) {
	paths, err := manuscript.Images(m.Dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	return names, nil
}

type imagesSaveArgs struct {
	Manuscript string                    `json:"manuscript"`
	Files      []manuscript.UploadedFile `json:"files"`
}

func (s *Server) handleImagesSave(args json.RawMessage) (interface{}, error) {
	var a imagesSaveArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	m, err := s.repo.Open(a.Manuscript)
	if err != nil {
		return nil, err
	}
	paths, err := manuscript.SaveImages(m.Dir, a.Files)
	if err != nil {
		return nil, err
	}

	saved := make([]string, len(paths))
	for i, p := range paths {
		// Overwritten pages must be decoded afresh
		s.cache.Evict(p)
		saved[i] = filepath.Base(p)
	}
	s.logger.Info("saved page images", "manuscript", m.Name, "count", len(saved))
	return map[string]interface{}{
		"manuscript": m.Name,
		"saved":      saved,
		"count":      len(saved),
	}, nil
}

// === Page Annotation Handlers ===

// pageArgs addresses one page image of a manuscript.
type pageArgs struct {
	Manuscript string `json:"manuscript"`
	Page       string `json:"page"`
}

// resolve opens the manuscript and returns the page image path.
func (s *Server) resolve(a pageArgs) (*manuscript.Manuscript, string, error) {
	m, err := s.repo.Open(a.Manuscript)
	if err != nil {
		return nil, "", err
	}
	if err := errs.ValidateFileName(a.Page); err != nil {
		return nil, "", err
	}
	return m, filepath.Join(m.ImagesPath(), a.Page), nil
}

func (s *Server) handlePageInfo(args json.RawMessage) (interface{}, error) {
	var a pageArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	_, path, err := s.resolve(a)
	if err != nil {
		return nil, err
	}
	return imaging.LoadPageInfo(s.cache, path)
}

type pageSaveArgs struct {
	pageArgs
	Boxes []geometry.BBox `json:"boxes"`
	Lines []geometry.Line `json:"lines"`
}

func (s *Server) handlePageSave(args json.RawMessage) (interface{}, error) {
	var a pageSaveArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	m, _, err := s.resolve(a.pageArgs)
	if err != nil {
		return nil, err
	}
	state, err := manuscript.SavePage(m.Dir, a.Page, a.Boxes, a.Lines)
	if err != nil {
		return nil, err
	}
	s.logger.Info("saved page", "manuscript", m.Name, "page", a.Page,
		"boxes", len(state.Boxes), "lines", len(state.Lines), "unassigned", state.Unassigned)
	return state, nil
}

func (s *Server) handlePageLoad(args json.RawMessage) (interface{}, error) {
	var a pageArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	m, _, err := s.resolve(a)
	if err != nil {
		return nil, err
	}
	return manuscript.LoadPage(m.Dir, a.Page)
}

type pageOverlayArgs struct {
	pageArgs

	// Boxes and Lines preview an unsaved annotation; when both are omitted
	// the stored annotation is drawn.
	Boxes []geometry.BBox `json:"boxes"`
	Lines []geometry.Line `json:"lines"`

	Stroke          int    `json:"stroke"`
	Labels          *bool  `json:"labels"`
	MaxWidth        int    `json:"max_width"`
	UnassignedColor string `json:"unassigned_color"`
}

func (s *Server) handlePageOverlay(args json.RawMessage) (interface{}, error) {
	var a pageOverlayArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	m, path, err := s.resolve(a.pageArgs)
	if err != nil {
		return nil, err
	}

	var state *manuscript.PageState
	if a.Boxes == nil && a.Lines == nil {
		if state, err = manuscript.LoadPage(m.Dir, a.Page); err != nil {
			return nil, err
		}
	} else {
		state = manuscript.ArrangePage(a.Page, a.Boxes, a.Lines)
	}

	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	labels := true
	if a.Labels != nil {
		labels = *a.Labels
	}
	return imaging.RenderOverlay(img, state.Boxes, state.Lines, imaging.OverlayOptions{
		Stroke:          a.Stroke,
		Labels:          labels,
		MaxWidth:        a.MaxWidth,
		UnassignedColor: a.UnassignedColor,
	})
}

// boxRef selects a box either by its coordinates or by the index of a
// stored box of the page.
type boxRef struct {
	Box   *geometry.BBox `json:"box"`
	Index int            `json:"index"`
}

func (s *Server) lookupBox(m *manuscript.Manuscript, page string, ref boxRef) (geometry.BBox, error) {
	if ref.Box != nil {
		return ref.Box.Normalize(), nil
	}
	if ref.Index < 1 {
		return geometry.BBox{}, errs.New(errs.ErrCodeInvalidInput, "box", "either box or a positive index is required")
	}
	state, err := manuscript.LoadPage(m.Dir, page)
	if err != nil {
		return geometry.BBox{}, err
	}
	for _, b := range state.Boxes {
		if b.Index == ref.Index {
			return b, nil
		}
	}
	return geometry.BBox{}, errs.New(errs.ErrCodeNotFound, fmt.Sprintf("box %d", ref.Index), "no stored box with this index on %s", page)
}

type pageCropBoxArgs struct {
	pageArgs
	boxRef
	Scale float64 `json:"scale"`
}

func (s *Server) handlePageCropBox(args json.RawMessage) (interface{}, error) {
	var a pageCropBoxArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	m, path, err := s.resolve(a.pageArgs)
	if err != nil {
		return nil, err
	}
	box, err := s.lookupBox(m, a.Page, a.boxRef)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	return imaging.CropBox(img, box, a.Scale)
}

// === Assistance Handlers ===

type pageDetectArgs struct {
	pageArgs
	Options detection.Options `json:"options"`
	Save    bool              `json:"save"`
}

func (s *Server) handlePageDetect(args json.RawMessage) (interface{}, error) {
	var a pageDetectArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	m, path, err := s.resolve(a.pageArgs)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	layout, err := detection.Detect(img, a.Options)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("detected layout", "page", a.Page, "lines", len(layout.Lines), "boxes", len(layout.Boxes), "threshold", layout.Threshold)

	result := map[string]interface{}{
		"lines":     layout.Lines,
		"boxes":     layout.Boxes,
		"threshold": layout.Threshold,
		"saved":     false,
	}
	if a.Save {
		state, err := manuscript.SavePage(m.Dir, a.Page, layout.Boxes, layout.Lines)
		if err != nil {
			return nil, err
		}
		result["lines"], result["boxes"], result["saved"] = state.Lines, state.Boxes, true
	}
	return result, nil
}

type pageOCRBoxArgs struct {
	pageArgs
	boxRef
	Language string `json:"language"`
}

func (s *Server) handlePageOCRBox(args json.RawMessage) (interface{}, error) {
	var a pageOCRBoxArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Language == "" {
		a.Language = s.language
	}
	m, path, err := s.resolve(a.pageArgs)
	if err != nil {
		return nil, err
	}
	box, err := s.lookupBox(m, a.Page, a.boxRef)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	result, err := ocr.RecognizeBox(img, box, a.Language)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"box":        box,
		"language":   a.Language,
		"text":       result.Text,
		"confidence": result.Confidence,
		"words":      result.Words,
	}, nil
}

type pageSuggestArgs struct {
	pageArgs
	Language string `json:"language"`
	Save     bool   `json:"save"`
}

func (s *Server) handlePageSuggest(args json.RawMessage) (interface{}, error) {
	var a pageSuggestArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Language == "" {
		a.Language = s.language
	}
	m, path, err := s.resolve(a.pageArgs)
	if err != nil {
		return nil, err
	}
	suggestion, err := ocr.Suggest(path, a.Language)
	if err != nil {
		return nil, err
	}

	saved := false
	if a.Save {
		if _, err := manuscript.SavePage(m.Dir, a.Page, suggestion.Boxes, suggestion.Lines); err != nil {
			return nil, err
		}
		saved = true
	}
	return map[string]interface{}{
		"language":   a.Language,
		"lines":      suggestion.Lines,
		"boxes":      suggestion.Boxes,
		"words":      suggestion.Words,
		"unassigned": suggestion.Unassigned,
		"saved":      saved,
	}, nil
}

// === Pure Helpers ===

type centuriesParseArgs struct {
	Text string `json:"text"`
}

func (s *Server) handleCenturiesParse(args json.RawMessage) (interface{}, error) {
	var a centuriesParseArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	r, isDefault := s.centuries, true
	if a.Text != "" {
		parsed, err := manuscript.ParseCenturies(a.Text)
		if err != nil {
			return nil, err
		}
		r, isDefault = parsed, false
	}
	return map[string]interface{}{
		"range":     r,
		"formatted": manuscript.FormatCenturies(r),
		"default":   isDefault,
	}, nil
}

type geometryArgs struct {
	Boxes []geometry.BBox `json:"boxes"`
	Lines []geometry.Line `json:"lines"`
}

func (s *Server) handleGeometrySort(args json.RawMessage) (interface{}, error) {
	var a geometryArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"boxes": geometry.SortBoxes(a.Boxes),
		"lines": geometry.SortLines(a.Lines),
	}, nil
}

func (s *Server) handleGeometryAssign(args json.RawMessage) (interface{}, error) {
	var a geometryArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	state := manuscript.ArrangePage("", a.Boxes, a.Lines)
	return map[string]interface{}{
		"boxes":      state.Boxes,
		"lines":      state.Lines,
		"unassigned": state.Unassigned,
	}, nil
}
