package utils

// NewNullString maps the empty string to nil. Handlers use it to turn
// blank query parameters into absent filters rather than matching "".
func NewNullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
