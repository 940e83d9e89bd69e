package devtools

import (
	"fmt"
	"html"
	"os"
	"strings"
	"time"

	"mazerunner/pkg/game/renderer"
	"mazerunner/pkg/game/state"
)

// styleClasses maps renderer styles to the CSS classes below
var styleClasses = map[renderer.TextStyle]string{
	renderer.StyleWall:   "wall",
	renderer.StyleOpen:   "floor",
	renderer.StyleSafe:   "glade",
	renderer.StyleScent:  "scent",
	renderer.StyleRunner: "runner",
	renderer.StyleDead:   "dead",
	renderer.StyleTask:   "task",
	renderer.StyleExit:   "exit",
}

// FrameHTML renders the whole frame as a standalone HTML page
func FrameHTML(f state.Frame) string {
	var sb strings.Builder

	sb.WriteString(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>mazerunner - Screenshot</title>
    <style>
        body {
            background-color: #1a1a2e;
            color: #eee;
            font-family: 'Courier New', monospace;
            padding: 20px;
        }
        .header {
            color: #bb86fc;
            font-size: 18px;
            margin-bottom: 10px;
        }
        .map-container {
            background-color: #0f0f1a;
            padding: 20px;
            border-radius: 8px;
            display: inline-block;
            margin: 20px 0;
        }
        .map-row {
            white-space: pre;
            line-height: 1.2;
            font-size: 16px;
        }
        .runner { color: #00ff00; font-weight: bold; }
        .dead { color: #ff4444; font-weight: bold; }
        .wall { color: #666; }
        .floor { color: #888; }
        .glade { color: #00aa00; }
        .scent { color: #ffff00; }
        .task { color: #00ffff; font-weight: bold; }
        .exit { color: #ff66ff; font-weight: bold; }
        .messages {
            margin-top: 20px;
            border-top: 1px solid #333;
            padding-top: 10px;
        }
        .message { color: #ccc; margin: 5px 0; }
    </style>
</head>
<body>
`)

	sb.WriteString(fmt.Sprintf(`    <div class="header">%s</div>`+"\n", html.EscapeString(renderer.StatusLine(f))))
	sb.WriteString(`    <div class="map-container">` + "\n")
	for _, row := range renderer.Layout(f) {
		sb.WriteString(`        <div class="map-row">`)
		for _, g := range row {
			sb.WriteString(fmt.Sprintf(`<span class="%s">%s</span>`, styleClasses[g.Style], html.EscapeString(g.Icon)))
		}
		sb.WriteString("</div>\n")
	}
	sb.WriteString(`    </div>` + "\n")

	if len(f.Messages) > 0 {
		sb.WriteString(`    <div class="messages">` + "\n")
		for _, msg := range f.Messages {
			sb.WriteString(fmt.Sprintf(`        <div class="message">%s</div>`+"\n", html.EscapeString(msg)))
		}
		sb.WriteString(`    </div>` + "\n")
	}

	sb.WriteString(`</body>
</html>
`)
	return sb.String()
}

// SaveScreenshotHTML writes FrameHTML to path, or to a timestamped file in
// the working directory when path is empty. It returns the file name.
func SaveScreenshotHTML(path string, f state.Frame) (string, error) {
	if path == "" {
		path = fmt.Sprintf("screenshot-%s.html", time.Now().Format("20060102-150405"))
	}
	if err := os.WriteFile(path, []byte(FrameHTML(f)), 0o644); err != nil {
		return "", fmt.Errorf("save screenshot: %w", err)
	}
	return path, nil
}
