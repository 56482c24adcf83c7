package validate

import (
	"errors"
	"sync"
	"time"

	"github.com/dlclark/regexp2"
)

// MaxRegexTimeout bounds every REGEX match.
const MaxRegexTimeout = time.Second

var errInvalidPattern = errors.New("invalid pattern")

// regexCache compiles each pattern once per timeout. Compiled regexp2
// values are safe for concurrent matching.
type regexCache struct {
	timeout time.Duration
	mu      sync.RWMutex
	byExpr  map[string]*regexp2.Regexp
}

func newRegexCache(timeout time.Duration) *regexCache {
	if timeout <= 0 || timeout > MaxRegexTimeout {
		timeout = MaxRegexTimeout
	}
	return &regexCache{timeout: timeout, byExpr: make(map[string]*regexp2.Regexp)}
}

func (c *regexCache) get(pattern string) (*regexp2.Regexp, error) {
	c.mu.RLock()
	re, ok := c.byExpr[pattern]
	c.mu.RUnlock()
	if ok {
		if re == nil {
			return nil, errInvalidPattern
		}
		return re, nil
	}

	re, err := regexp2.Compile(pattern, regexp2.None)
	if err == nil {
		re.MatchTimeout = c.timeout
	} else {
		re = nil
	}

	c.mu.Lock()
	c.byExpr[pattern] = re
	c.mu.Unlock()

	if re == nil {
		return nil, errInvalidPattern
	}
	return re, nil
}

// match runs a partial, case-sensitive match of answer against pattern.
// An invalid pattern returns errInvalidPattern; a timeout returns the
// regexp2 error and must be treated as a failed match.
func (c *regexCache) match(pattern, answer string) (bool, error) {
	re, err := c.get(pattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(answer)
}
