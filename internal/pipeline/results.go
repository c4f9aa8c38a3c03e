package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// FormatDocument renders a document in the requested output format.
// Supported formats are "json", "yaml" and "text".
func FormatDocument(doc *Document, format string) (string, error) {
	switch format {
	case "json":
		return formatJSON(doc)
	case "yaml":
		return formatYAML(doc)
	case "text", "":
		return formatText(doc), nil
	default:
		return "", fmt.Errorf("unsupported output format: %q", format)
	}
}

func formatJSON(doc *Document) (string, error) {
	bts, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal results: %w", err)
	}
	return string(bts), nil
}

func formatYAML(doc *Document) (string, error) {
	bts, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal results: %w", err)
	}
	return string(bts), nil
}

// formatText renders the recognized text in reading order, one page
// after another, with a short header per page.
func formatText(doc *Document) string {
	var sb strings.Builder

	for i, page := range doc.Pages {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "--- page %d ---\n", page.PageNumber)

		if page.Failed {
			fmt.Fprintf(&sb, "[page failed: %s]\n", page.Error)
			continue
		}
		if page.SkewAngle != 0 {
			fmt.Fprintf(&sb, "[skew corrected: %.1f°]\n", page.SkewAngle)
		}

		for _, region := range page.Regions {
			switch {
			case region.Type != "text":
				fmt.Fprintf(&sb, "[%s]\n", region.ID)
			case region.Status == StatusOCRFailed:
				fmt.Fprintf(&sb, "[%s: OCR failed: %s]\n", region.ID, region.Error)
			default:
				sb.WriteString(region.Text())
				sb.WriteString("\n")
			}
		}
	}
	return sb.String()
}
