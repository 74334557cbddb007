package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RetryToken identifies a failed fetch so it can be retried or dismissed.
type RetryToken struct {
	Kind      Kind
	Timestamp time.Time
}

func NewRetryToken(kind Kind, at time.Time) RetryToken {
	return RetryToken{Kind: kind, Timestamp: at}
}

// String renders the token as <kind>-<unixnano>.
func (t RetryToken) String() string {
	return fmt.Sprintf("%s-%d", t.Kind, t.Timestamp.UnixNano())
}

func (t RetryToken) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *RetryToken) UnmarshalText(b []byte) error {
	parsed, err := ParseRetryToken(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func ParseRetryToken(s string) (RetryToken, error) {
	i := strings.LastIndex(s, "-")
	if i <= 0 || i == len(s)-1 {
		return RetryToken{}, fmt.Errorf("malformed retry token %q", s)
	}
	kind, ok := ParseKind(s[:i])
	if !ok {
		return RetryToken{}, fmt.Errorf("unknown kind in retry token %q", s)
	}
	nanos, err := strconv.ParseInt(s[i+1:], 10, 64)
	if err != nil {
		return RetryToken{}, fmt.Errorf("malformed timestamp in retry token %q", s)
	}
	return RetryToken{Kind: kind, Timestamp: time.Unix(0, nanos).UTC()}, nil
}

// RecoverableError is a soft failure returned alongside data.
type RecoverableError struct {
	Kind     Kind       `json:"kind"`
	Message  string     `json:"message"`
	Token    RetryToken `json:"token"`
	VendorID string     `json:"vendor_id,omitempty"`
	TourID   string     `json:"tour_id,omitempty"`
}

func (e RecoverableError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}
