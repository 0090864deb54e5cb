package common

import (
	"fmt"
	"strings"
)

// DefaultWidth is the separator width for report headers and footers.
const DefaultWidth = 80

// PrintHeader prints a report title between separator rules.
func PrintHeader(title string, width int) {
	rule := strings.Repeat("=", width)
	fmt.Println("\n" + rule)
	fmt.Println(title)
	fmt.Println(rule)
}

// PrintFooter prints a closing summary line between separator rules.
func PrintFooter(message string, width int) {
	rule := strings.Repeat("=", width)
	fmt.Println("\n" + rule)
	fmt.Println(message)
	fmt.Println(rule + "\n")
}

// PrintBoxSeparator prints the rule between a user header and its entries.
func PrintBoxSeparator(width int) {
	fmt.Println("├" + strings.Repeat("─", width))
}

// BoxPrefix returns the box-drawing prefix for a ledger entry line.
func BoxPrefix(isLast bool) string {
	if isLast {
		return "└  "
	}
	return "│  "
}
