package domain

import "strings"

// ValidateTriggers checks that an alert carries at least one trigger and
// that its numeric fields are coherent.
func ValidateTriggers(desiredPrice, desiredPercent *float64, alertIfSale bool, originalPrice, currentPrice *float64) error {
	if desiredPrice == nil && desiredPercent == nil && !alertIfSale {
		return ErrNoTrigger
	}
	if desiredPrice != nil && *desiredPrice <= 0 {
		return ErrInvalidPrice
	}
	if desiredPercent != nil {
		if *desiredPercent <= 0 || *desiredPercent > 100 {
			return ErrInvalidPercent
		}
		// A percent trigger needs a baseline to compute the drop from.
		if originalPrice == nil || *originalPrice <= 0 {
			return ErrMissingOriginal
		}
	}
	if currentPrice != nil && *currentPrice <= 0 {
		return ErrInvalidPrice
	}
	return nil
}

// NormalizeChannels trims, upcases and dedupes channel names. An empty
// list defaults to the in-app widget.
func NormalizeChannels(channels []string) ([]string, error) {
	out := make([]string, 0, len(channels))
	seen := make(map[string]struct{}, len(channels))
	for _, ch := range channels {
		normalized := strings.ToUpper(strings.TrimSpace(ch))
		if normalized == "" {
			continue
		}
		if normalized != ChannelEmail && normalized != ChannelAppWidget {
			return nil, ErrInvalidChannel
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	if len(out) == 0 {
		out = append(out, ChannelAppWidget)
	}
	return out, nil
}
