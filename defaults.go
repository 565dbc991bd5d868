package kvbag

const (
	defaultKeyspace      = "local"
	globalKeyspace       = "global"
	defaultMergeAttempts = 10
)

// coalesce picks def for a zero v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

func joinFlags(flags []Flag) Flag {
	var f Flag
	for _, x := range flags {
		f |= x
	}
	return f
}
