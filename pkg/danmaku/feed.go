package danmaku

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// Feed reads newline-delimited comments from r on the calling goroutine and
// posts launch(text) onto the UI loop through post for each non-empty line.
// It returns when r is exhausted or ctx ends.
func Feed(ctx context.Context, r io.Reader, post func(func()), launch func(string)) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		post(func() { launch(text) })
	}
	return scanner.Err()
}
