package orders

import (
	"strconv"
	"strings"

	"github.com/rmarasigan/printshop-pos-backend/pkg/config"
)

// ScanCodeParser recognizes receipt scan codes of the form PREFIX-BRANCH-DIGITS
// (for example "25-200-000123") as well as bare numeric ids typed at the
// terminal. Prefix and branch come from the receipt configuration.
type ScanCodeParser struct {
	prefix string
	branch string
}

// NewScanCodeParser builds a parser for the configured receipt code layout.
func NewScanCodeParser(cfg config.ReceiptConfig) *ScanCodeParser {
	prefix := strings.TrimSpace(cfg.ScanPrefix)
	if prefix == "" {
		prefix = "25"
	}
	branch := strings.TrimSpace(cfg.ScanBranch)
	if branch == "" {
		branch = "200"
	}
	return &ScanCodeParser{prefix: prefix, branch: branch}
}

// Parse extracts an order id from the input. The second return is false when
// the input is not a scan code; free-text search handles those.
func (p *ScanCodeParser) Parse(input string) (int64, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, false
	}

	if id, ok := parseDigits(input); ok {
		return id, true
	}

	parts := strings.Split(input, "-")
	if len(parts) != 3 {
		return 0, false
	}
	if parts[0] != p.prefix || parts[1] != p.branch {
		return 0, false
	}
	return parseDigits(parts[2])
}

// Format renders the scan code for an order id, zero-padded to six digits the
// way receipts print it.
func (p *ScanCodeParser) Format(orderID int64) string {
	if orderID <= 0 {
		return ""
	}
	digits := strconv.FormatInt(orderID, 10)
	for len(digits) < 6 {
		digits = "0" + digits
	}
	return p.prefix + "-" + p.branch + "-" + digits
}

func parseDigits(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	// Leading zeros collapse: "000123" resolves to order 123.
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
