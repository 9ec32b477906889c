package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

func integerProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": description,
	}
}

func scaleFactorProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":             "number",
		"description":      "Downscale factor in (0,1] applied to both images before searching. Smaller is faster and coarser; halving it cuts the search cost about 16x. Defaults to the server setting.",
		"exclusiveMinimum": 0,
		"maximum":          1,
	}
}

// matchRegionProperties describe a match position plus the piece size.
func matchRegionProperties() map[string]interface{} {
	return map[string]interface{}{
		"puzzle_path": pathProperty("Absolute path to the completed puzzle image"),
		"x":           integerProperty("Left edge of the match (puzzle pixels, 0-based)"),
		"y":           integerProperty("Top edge of the match (puzzle pixels, 0-based)"),
		"width":       integerProperty("Width of the piece in puzzle pixels"),
		"height":      integerProperty("Height of the piece in puzzle pixels"),
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	annotateProps := matchRegionProperties()
	annotateProps["color"] = map[string]interface{}{
		"type":        "string",
		"description": "Marker color as #RRGGBB or #RGB. Default #FF0000",
		"default":     "#FF0000",
	}
	annotateProps["thickness"] = map[string]interface{}{
		"type":        "integer",
		"description": "Circle stroke width in pixels. Default 3",
		"default":     3,
	}

	cropProps := matchRegionProperties()
	cropProps["scale"] = map[string]interface{}{
		"type":        "number",
		"description": "Optional scale factor for the returned crop (e.g., 2.0 to double size). Default 1.0",
		"default":     1.0,
	}

	return []Tool{
		// Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and file size.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},

		// Matching
		{
			Name:        "puzzle_find_piece",
			Description: "Find where a puzzle piece image fits inside a completed puzzle image by exhaustive template matching. Returns the top-left position in puzzle pixels, a similarity score in [0,1], and whether the score clears the confidence threshold.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"puzzle_path":  pathProperty("Absolute path to the completed puzzle image"),
					"piece_path":   pathProperty("Absolute path to the puzzle piece image"),
					"scale_factor": scaleFactorProperty(),
					"threshold": map[string]interface{}{
						"type":        "number",
						"description": "Scores strictly above this count as a confident match. Defaults to the server setting.",
						"minimum":     0,
						"maximum":     1,
					},
				},
				"required": []string{"puzzle_path", "piece_path"},
			},
		},
		{
			Name:        "puzzle_estimate_cost",
			Description: "Report the scaled image sizes, candidate positions and pixel comparisons puzzle_find_piece would need, without running the search.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"puzzle_path":  pathProperty("Absolute path to the completed puzzle image"),
					"piece_path":   pathProperty("Absolute path to the puzzle piece image"),
					"scale_factor": scaleFactorProperty(),
				},
				"required": []string{"puzzle_path", "piece_path"},
			},
		},

		// Match Follow-up
		{
			Name:        "puzzle_annotate_match",
			Description: "Draw a circle around a matched region of the completed puzzle and return the image as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": annotateProps,
				"required":   []string{"puzzle_path", "x", "y", "width", "height"},
			},
		},
		{
			Name:        "puzzle_crop_match",
			Description: "Crop the matched region from the completed puzzle and return it as base64-encoded PNG, to compare it with the piece by eye.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": cropProps,
				"required":   []string{"puzzle_path", "x", "y", "width", "height"},
			},
		},
		{
			Name:        "puzzle_verify_match",
			Description: "Compare the piece with the puzzle region at a given position at full resolution. Returns pixel similarity, mean CIE76 color distance and perceptual hash distance.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"puzzle_path": pathProperty("Absolute path to the completed puzzle image"),
					"piece_path":  pathProperty("Absolute path to the puzzle piece image"),
					"x":           integerProperty("Left edge of the match (puzzle pixels, 0-based)"),
					"y":           integerProperty("Top edge of the match (puzzle pixels, 0-based)"),
				},
				"required": []string{"puzzle_path", "piece_path", "x", "y"},
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
