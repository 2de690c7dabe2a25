// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package reembed

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// RetryWithBackoff runs op up to attempts times, doubling the wait between
// tries starting from base. The context is checked before every try and
// honored while waiting. When every try fails, the error from the last one
// is returned.
func RetryWithBackoff(ctx context.Context, attempts int, base time.Duration, op func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidAttempts, attempts)
	}

	delay := base
	var last error
	for try := 1; ; try++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if last = op(); last == nil {
			if try > 1 {
				slog.Debug("embedding call succeeded after retry", "try", try)
			}
			return nil
		}

		if try == attempts {
			return last
		}
		slog.Debug("embedding call failed, retrying", "try", try, "attempts", attempts, "err", last)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
}
