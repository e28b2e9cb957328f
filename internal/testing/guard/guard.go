package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("SYNERGY_TEST_MODE") == "" {
			_ = os.Setenv("SYNERGY_TEST_MODE", "1")
		}
	})
}
