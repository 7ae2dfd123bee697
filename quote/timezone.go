package quote

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseTimezone turns "GMT+7" or "GMT-5" into a fixed zone.
func ParseTimezone(s string) (*time.Location, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "GMT+") && !strings.HasPrefix(s, "GMT-") {
		return nil, fmt.Errorf("timezone must be in format 'GMT+n' or 'GMT-n', got %q", s)
	}
	hours, err := strconv.Atoi(s[4:])
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", s, err)
	}
	if hours < 0 || hours > 14 {
		return nil, fmt.Errorf("timezone %q: offset out of range", s)
	}
	offset := hours * 3600
	if s[3] == '-' {
		offset = -offset
	}
	return time.FixedZone(s, offset), nil
}
