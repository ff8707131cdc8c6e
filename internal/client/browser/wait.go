package browser

import (
	"fmt"
	"time"
)

// WaitUntil polls cond every interval until it reports true, returns an
// error, or timeout elapses. cond is always evaluated at least once.
func WaitUntil(timeout, interval time.Duration, cond func() (bool, error)) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		ok, err := cond()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}

		select {
		case <-deadline.C:
			return fmt.Errorf("%w after %s", ErrWaitTimeout, timeout)
		case <-ticker.C:
		}
	}
}
