package recommend

// Result size bounds.
const (
	MinLimit     = 1
	MaxLimit     = 10
	DefaultLimit = 5
)

// ClampLimit forces limit into [MinLimit, MaxLimit].
func ClampLimit(limit int) int {
	return max(MinLimit, min(limit, MaxLimit))
}
