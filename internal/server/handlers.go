package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/piece-finder-mcp/internal/imaging"
	"github.com/ironsheep/piece-finder-mcp/internal/matcher"
)

// ErrSearchTooCostly is returned when a search would exceed the configured
// pixel comparison budget.
var ErrSearchTooCostly = errors.New("search exceeds cost limit")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "puzzle_find_piece").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
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
// whose data carries the error text and, when known, its kind.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", toolErrorData(err))
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", toolErrorData(err))
	}

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
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	case "puzzle_find_piece":
		return s.handleFindPiece(args)
	case "puzzle_estimate_cost":
		return s.handleEstimateCost(args)

	case "puzzle_annotate_match":
		return s.handleAnnotateMatch(args)
	case "puzzle_crop_match":
		return s.handleCropMatch(args)
	case "puzzle_verify_match":
		return s.handleVerifyMatch(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
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

// toolErrorData describes err for MCPError.Data.
func toolErrorData(err error) map[string]string {
	data := map[string]string{"error": err.Error()}
	if kind := errorKind(err); kind != "" {
		data["kind"] = kind
	}
	return data
}

// errorKind names the failure classes a client may want to react to.
func errorKind(err error) string {
	switch {
	case errors.Is(err, matcher.ErrInvalidScale):
		return "invalid_scale"
	case errors.Is(err, matcher.ErrSizeMismatch):
		return "size_mismatch"
	case errors.Is(err, imaging.ErrDecode):
		return "decode_error"
	case errors.Is(err, imaging.ErrFileTooLarge):
		return "file_too_large"
	case errors.Is(err, ErrSearchTooCostly):
		return "search_too_costly"
	}
	return ""
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return errors.New("missing arguments")
	}
	return json.Unmarshal(args, v)
}

// === Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Matching Handlers ===

type piecePairArgs struct {
	PuzzlePath  string   `json:"puzzle_path"`
	PiecePath   string   `json:"piece_path"`
	ScaleFactor *float64 `json:"scale_factor"`
}

// scale returns the requested scale factor, or the configured one when
// the argument was omitted. An explicit 0 is passed through and rejected
// by the matcher.
func (a *piecePairArgs) scale(def float64) float64 {
	if a.ScaleFactor == nil {
		return def
	}
	return *a.ScaleFactor
}

// loadPair loads the puzzle and piece images.
func (s *Server) loadPair(a *piecePairArgs) (image.Image, image.Image, error) {
	if a.PuzzlePath == "" || a.PiecePath == "" {
		return nil, nil, errors.New("puzzle_path and piece_path are required")
	}
	puzzle, err := s.cache.Load(a.PuzzlePath)
	if err != nil {
		return nil, nil, fmt.Errorf("completed puzzle: %w", err)
	}
	piece, err := s.cache.Load(a.PiecePath)
	if err != nil {
		return nil, nil, fmt.Errorf("puzzle piece: %w", err)
	}
	return puzzle, piece, nil
}

type findPieceArgs struct {
	piecePairArgs
	Threshold *float64 `json:"threshold"`
}

// FindPieceResult is the puzzle_find_piece response.
type FindPieceResult struct {
	RequestID string               `json:"request_id"`
	Match     *matcher.MatchResult `json:"match"`

	// Confident is true when Match.Score is strictly above Threshold.
	Confident bool    `json:"confident"`
	Threshold float64 `json:"threshold"`

	// Region is the piece-sized area at the match, in puzzle pixels.
	Region imaging.Region `json:"region"`
	Center imaging.Point  `json:"center"`

	Puzzle       imaging.DimensionsResult `json:"puzzle"`
	Piece        imaging.DimensionsResult `json:"piece"`
	PiecePalette []imaging.ColorFrequency `json:"piece_palette"`

	// ExplanationPrompt is set for confident matches: a question a
	// reasoning service could be asked about the placement.
	ExplanationPrompt string `json:"explanation_prompt,omitempty"`

	// Message is set when the match is not confident.
	Message string `json:"message,omitempty"`

	ElapsedMS int64 `json:"elapsed_ms"`
}

// isConfident applies the threshold policy to a score.
func isConfident(score, threshold float64) bool {
	return score > threshold
}

func (s *Server) handleFindPiece(args json.RawMessage) (interface{}, error) {
	var a findPieceArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	threshold := s.cfg.ConfidenceThreshold
	if a.Threshold != nil {
		threshold = *a.Threshold
	}
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("threshold %g is outside [0,1]", threshold)
	}
	scale := a.scale(s.cfg.ScaleFactor)

	// The inputs are single-use: drop them once the call is done.
	defer s.cache.Evict(a.PuzzlePath)
	defer s.cache.Evict(a.PiecePath)

	puzzle, piece, err := s.loadPair(&a.piecePairArgs)
	if err != nil {
		return nil, err
	}

	est, err := matcher.Estimate(puzzle.Bounds(), piece.Bounds(), scale)
	if err != nil {
		return nil, err
	}
	if s.cfg.MaxSearchCost > 0 && est.Comparisons > s.cfg.MaxSearchCost {
		return nil, fmt.Errorf("%w: %d pixel comparisons at scale %g, limit %d; lower scale_factor",
			ErrSearchTooCostly, est.Comparisons, scale, s.cfg.MaxSearchCost)
	}

	reqID := uuid.NewString()
	if s.cfg.Debug() {
		log.Printf("[%s] matching %s in %s at scale %g (%dx%d in %dx%d, %d comparisons)",
			reqID, a.PiecePath, a.PuzzlePath, scale,
			est.ScaledPiece.Width, est.ScaledPiece.Height,
			est.ScaledPuzzle.Width, est.ScaledPuzzle.Height, est.Comparisons)
	}

	start := time.Now()
	match, err := s.matcher.FindBestMatch(puzzle, piece, scale)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	pb, sb := puzzle.Bounds(), piece.Bounds()
	region := imaging.MatchRegion(match.X, match.Y, sb.Dx(), sb.Dy()).Within(pb.Dx(), pb.Dy())
	result := &FindPieceResult{
		RequestID:    reqID,
		Match:        match,
		Confident:    isConfident(match.Score, threshold),
		Threshold:    threshold,
		Region:       region,
		Center:       region.Center(),
		Puzzle:       imaging.DimensionsResult{Width: pb.Dx(), Height: pb.Dy()},
		Piece:        imaging.DimensionsResult{Width: sb.Dx(), Height: sb.Dy()},
		PiecePalette: imaging.DominantColors(piece, 3),
		ElapsedMS:    elapsed.Milliseconds(),
	}
	if result.Confident {
		result.ExplanationPrompt = explanationPrompt(result)
	} else {
		result.Message = "Could not confidently match the puzzle piece in the completed puzzle."
	}

	log.Printf("[%s] match at (%.1f,%.1f) score %.4f confident=%t in %s",
		reqID, match.X, match.Y, match.Score, result.Confident, elapsed)
	return result, nil
}

// explanationPrompt phrases a confident match as a question for a
// downstream reasoning service.
func explanationPrompt(r *FindPieceResult) string {
	hexes := make([]string, 0, len(r.PiecePalette))
	for _, c := range r.PiecePalette {
		hexes = append(hexes, c.Hex)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Template matching placed a %dx%d puzzle piece at (%.0f, %.0f) in a %dx%d completed puzzle with a similarity score of %.2f.",
		r.Piece.Width, r.Piece.Height, r.Match.X, r.Match.Y, r.Puzzle.Width, r.Puzzle.Height, r.Match.Score)
	if len(hexes) > 0 {
		fmt.Fprintf(&b, " The piece's main colors are %s.", strings.Join(hexes, ", "))
	}
	b.WriteString(" Explain why this location is a plausible fit and what part of the picture the piece likely shows.")
	return b.String()
}

func (s *Server) handleEstimateCost(args json.RawMessage) (interface{}, error) {
	var a piecePairArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	puzzle, piece, err := s.loadPair(&a)
	if err != nil {
		return nil, err
	}
	est, err := matcher.Estimate(puzzle.Bounds(), piece.Bounds(), a.scale(s.cfg.ScaleFactor))
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"estimate":        est,
		"within_limit":    s.cfg.MaxSearchCost == 0 || est.Comparisons <= s.cfg.MaxSearchCost,
		"max_search_cost": s.cfg.MaxSearchCost,
	}, nil
}

// === Match Follow-up Handlers ===

type matchRegionArgs struct {
	PuzzlePath string `json:"puzzle_path"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
}

func (a *matchRegionArgs) region() imaging.Region {
	return imaging.Region{X1: a.X, Y1: a.Y, X2: a.X + a.Width, Y2: a.Y + a.Height}
}

type annotateMatchArgs struct {
	matchRegionArgs
	Color     string `json:"color"`
	Thickness int    `json:"thickness"`
}

func (s *Server) handleAnnotateMatch(args json.RawMessage) (interface{}, error) {
	var a annotateMatchArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Color == "" {
		a.Color = imaging.DefaultMarkerColor
	}
	if a.Thickness == 0 {
		a.Thickness = 3
	}
	img, err := s.cache.Load(a.PuzzlePath)
	if err != nil {
		return nil, err
	}
	return imaging.AnnotateMatch(img, a.region(), a.Color, a.Thickness)
}

type cropMatchArgs struct {
	matchRegionArgs
	Scale float64 `json:"scale"`
}

func (s *Server) handleCropMatch(args json.RawMessage) (interface{}, error) {
	var a cropMatchArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	img, err := s.cache.Load(a.PuzzlePath)
	if err != nil {
		return nil, err
	}
	return imaging.Crop(img, a.region(), a.Scale)
}

type verifyMatchArgs struct {
	PuzzlePath string `json:"puzzle_path"`
	PiecePath  string `json:"piece_path"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
}

func (s *Server) handleVerifyMatch(args json.RawMessage) (interface{}, error) {
	var a verifyMatchArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	puzzle, piece, err := s.loadPair(&piecePairArgs{PuzzlePath: a.PuzzlePath, PiecePath: a.PiecePath})
	if err != nil {
		return nil, err
	}
	return imaging.VerifyMatch(puzzle, piece, a.X, a.Y)
}
