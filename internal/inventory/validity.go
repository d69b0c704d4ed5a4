package inventory

import "time"

// NowMillis converts t to the Unix-millisecond scale used by Record.Expiry.
func NowMillis(t time.Time) uint64 {
	ms := t.UnixMilli()
	if ms < 0 {
		return 0
	}
	return uint64(ms)
}

// IsValid reports whether r is still inside its validity window at now.
func IsValid(r Record, now uint64) bool {
	return r.Expiry > now
}

// CheckValid returns r unchanged when valid, ErrExpired otherwise.
func CheckValid(r Record, now uint64) (Record, error) {
	if !IsValid(r, now) {
		return Record{}, ErrExpired
	}
	return r, nil
}

// FilterValid keeps the valid records in their original order. An empty
// result, including an empty input, is ErrExpired.
func FilterValid(records []Record, now uint64) ([]Record, error) {
	valid := make([]Record, 0, len(records))
	for _, r := range records {
		if IsValid(r, now) {
			valid = append(valid, r)
		}
	}
	if len(valid) == 0 {
		return nil, ErrExpired
	}
	return valid, nil
}
