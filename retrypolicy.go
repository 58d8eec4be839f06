package wcall

import (
	"time"

	boff "github.com/Andrej220/go-utils/backoff"
)

const (
	defaultRestartInitial = 5 * time.Millisecond
	defaultRestartMax     = time.Second
)

// RestartPolicy describes how a crash-looping worker slot backs off.
// Zero values are treated as "use defaults".
type RestartPolicy struct {
	// Initial is the first backoff duration.
	Initial time.Duration

	// Max is the cap for backoff duration.
	Max time.Duration
}

// GetDefaultRestart returns the restart policy used when none is configured.
func GetDefaultRestart() RestartPolicy {
	return RestartPolicy{
		Initial: defaultRestartInitial,
		Max:     defaultRestartMax,
	}
}

func (rp *RestartPolicy) fillDefaults() {
	if rp.Initial <= 0 {
		rp.Initial = defaultRestartInitial
	}
	if rp.Max < rp.Initial {
		rp.Max = max(defaultRestartMax, rp.Initial)
	}
}

// newDelay returns a jittered exponential backoff sequence for one slot.
func (rp RestartPolicy) newDelay() func() time.Duration {
	bo := boff.New(rp.Initial, rp.Max, time.Now().UnixNano())
	return func() time.Duration { return bo.Next() }
}
