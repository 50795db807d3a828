package checkout

import (
	"fmt"
	"strings"

	"github.com/fjod/growthshop/storefront/internal/domain"
)

// MinSenderDigits is the shortest sender account number accepted after
// normalization.
const MinSenderDigits = 11

const fieldMobile = "mobile"

// DefaultRequiredFields are the order info fields that must be filled in
// before payment.
var DefaultRequiredFields = []string{"name", fieldMobile, "email", "targetLink"}

// ParseRequiredFields turns a comma separated field list into a required
// field set. Mobile is always part of the result.
func ParseRequiredFields(csv string) ([]string, error) {
	var fields []string
	for _, f := range strings.Split(csv, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if _, ok := (domain.OrderInfo{}).Field(f); !ok {
			return nil, fmt.Errorf("unknown order info field %q", f)
		}
		fields = append(fields, f)
	}
	return normalizeRequired(fields), nil
}

func normalizeRequired(fields []string) []string {
	out := make([]string, 0, len(fields)+1)
	seen := make(map[string]bool, len(fields)+1)
	hasMobile := false
	for _, f := range fields {
		if seen[f] {
			continue
		}
		seen[f] = true
		hasMobile = hasMobile || f == fieldMobile
		out = append(out, f)
	}
	if !hasMobile {
		out = append([]string{fieldMobile}, out...)
	}
	return out
}

// ValidateOrderInfo reports every required field that is blank.
func ValidateOrderInfo(info domain.OrderInfo, required []string) error {
	var missing []string
	for _, name := range required {
		v, ok := info.Field(name)
		if !ok || strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

func trimOrderInfo(info domain.OrderInfo) domain.OrderInfo {
	return domain.OrderInfo{
		Name:           strings.TrimSpace(info.Name),
		Mobile:         strings.TrimSpace(info.Mobile),
		WhatsApp:       strings.TrimSpace(info.WhatsApp),
		Email:          strings.TrimSpace(info.Email),
		PersonalFbLink: strings.TrimSpace(info.PersonalFbLink),
		TargetLink:     strings.TrimSpace(info.TargetLink),
		Description:    strings.TrimSpace(info.Description),
	}
}

// NormalizeSenderNumber keeps only the digits, so "+880 1712-345678"
// becomes "8801712345678".
func NormalizeSenderNumber(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func validateSenderNumber(normalized string) error {
	if len(normalized) < MinSenderDigits {
		return &ValidationError{
			Fields: []string{"senderNumber"},
			Reason: fmt.Sprintf("sender number must have at least %d digits", MinSenderDigits),
		}
	}
	return nil
}
