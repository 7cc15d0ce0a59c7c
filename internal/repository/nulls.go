package repository

import "time"

// utcOrNil converts an optional timestamp into a driver argument.
func utcOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
