package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/cubeskin/pkg/pipeline"
	"github.com/matzehuels/cubeskin/pkg/skinpack"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - links
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for pack names and headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values such as the chosen merge mode.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for paths and data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for counts.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconSkip    = "·"
	iconCached  = "cached"
	iconFresh   = "composited"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// printFile prints an output path.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// =============================================================================
// Run Summary
// =============================================================================

// skipLabels describes skip reasons in user terms.
var skipLabels = map[pipeline.SkipReason]string{
	pipeline.SkipExcluded:            "not a full cube",
	pipeline.SkipUnresolved:          "faces not defined",
	pipeline.SkipMissingTexture:      "texture not in pack",
	pipeline.SkipPartialAlpha:        "semi-transparent",
	pipeline.SkipInvalidIdentifier:   "no usable file name",
	pipeline.SkipDuplicateIdentifier: "file name already used",
}

func skipLabel(r pipeline.SkipReason) string {
	if l, ok := skipLabels[r]; ok {
		return l
	}
	return strings.ReplaceAll(string(r), "_", " ")
}

// printSkipSummary prints one line per skip reason, most frequent first.
func printSkipSummary(res *pipeline.Result) {
	counts := res.SkippedBy()
	if len(counts) == 0 {
		return
	}
	reasons := make([]pipeline.SkipReason, 0, len(counts))
	for r := range counts {
		reasons = append(reasons, r)
	}
	sort.Slice(reasons, func(i, j int) bool {
		if counts[reasons[i]] != counts[reasons[j]] {
			return counts[reasons[i]] > counts[reasons[j]]
		}
		return reasons[i] < reasons[j]
	})
	printWarning("Skipped %d blocks", len(res.Skipped))
	for _, r := range reasons {
		fmt.Println("  " + StyleDim.Render(iconSkip) + " " +
			StyleNumber.Render(fmt.Sprintf("%4d", counts[r])) + " " + StyleDim.Render(skipLabel(r)))
	}
}

// printStats prints run statistics on a single line.
func printStats(skins, skipped, cacheHits int) {
	parts := []string{fmt.Sprintf("%d skins", skins)}
	if skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", skipped))
	}

	status := styleComputed.Render(iconFresh)
	if cacheHits > 0 {
		status = styleCached.Render(fmt.Sprintf("%d %s", cacheHits, iconCached))
	}

	line := "  "
	for _, part := range parts {
		line += StyleDim.Render(part) + StyleDim.Render(" · ")
	}
	fmt.Println(line + status)
}

// printPack prints the name, folder and key of a written skin pack.
func printPack(pack *skinpack.Pack) {
	fmt.Println(StyleTitle.Render(pack.Name))
	printKeyValue("Folder", pack.FolderName())
	printKeyValue("Skins", StyleNumber.Render(fmt.Sprint(pack.Len())))
	printKeyValue("Key", pack.Key)
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(10)
	fmt.Println("  " + keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}
