package shared

import (
	"sync"

	"github.com/spf13/pflag"
)

// HasFlags reports whether any flag in the set was changed on the command line.
func HasFlags(flags *pflag.FlagSet) bool {
	found := false
	flags.Visit(func(f *pflag.Flag) {
		found = true
	})
	return found
}

// IsInList reports whether value is one of the allowed list entries.
func IsInList(value string, list []string) bool {
	for _, entry := range list {
		if entry == value {
			return true
		}
	}
	return false
}

// ForEveryStringWithBoundedGoroutines runs f for every value on its own
// goroutine, with at most limit of them in flight at a time.
func ForEveryStringWithBoundedGoroutines(limit int, values []string, f func(i int, value string)) {
	guard := make(chan struct{}, limit)
	var wg sync.WaitGroup
	for i, value := range values {
		guard <- struct{}{} // would block if guard channel is already filled
		wg.Add(1)
		go func(i int, value string) {
			defer wg.Done()
			f(i, value)
			<-guard
		}(i, value)
	}
	wg.Wait()
}
